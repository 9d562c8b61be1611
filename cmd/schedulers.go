package cmd

import (
	"fmt"

	"github.com/stratos-karas/elise/internal/coscheduler"
	"github.com/stratos-karas/elise/internal/scheduler"
)

// newPolicy builds the named scheduling policy. An unknown name is an Input
// error rejected at setup, per spec.md §7: "unknown scheduler name — reject
// at setup."
func newPolicy(name string) (scheduler.Policy, error) {
	opts := scheduler.DefaultOptions()
	switch name {
	case "fifo":
		return scheduler.NewFIFO(opts), nil
	case "easy":
		return scheduler.NewEASY(opts), nil
	case "conservative":
		return scheduler.NewConservative(opts), nil
	case "ranks-random":
		return coscheduler.NewRandomRanks(), nil
	case "ranks-filler":
		return coscheduler.NewFillerRanks(), nil
	case "ranks-bester":
		return coscheduler.NewBesterRanks(), nil
	case "ranks-jungle":
		return coscheduler.NewJungleRanks(), nil
	case "rules":
		return coscheduler.NewRules(opts), nil
	default:
		return nil, fmt.Errorf("cmd: unknown scheduler %q (want one of: fifo, easy, conservative, ranks-random, ranks-filler, ranks-bester, ranks-jungle, rules)", name)
	}
}

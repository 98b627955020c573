package cmd

import (
	"github.com/charmbracelet/huh"
)

// huhPrompter surfaces Executor confirmations as an interactive terminal
// prompt.
type huhPrompter struct{}

func newHuhPrompter() *huhPrompter {
	return &huhPrompter{}
}

func (p *huhPrompter) Confirm(message string) bool {
	accepted := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(message).
				Affirmative("Yes").
				Negative("No").
				Value(&accepted),
		),
	)
	if err := form.Run(); err != nil {
		return false
	}
	return accepted
}

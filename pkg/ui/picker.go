package ui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/codewalk/pkg/walkthrough"
)

// ErrNoWalkthroughs is returned by PickWalkthrough when there is nothing to pick.
var ErrNoWalkthroughs = errors.New("no playable walkthroughs found")

// PickWalkthrough asks the user to choose one of the candidates and returns
// its path. A single candidate is returned without asking.
func PickWalkthrough(candidates []walkthrough.Candidate) (string, error) {
	switch len(candidates) {
	case 0:
		return "", ErrNoWalkthroughs
	case 1:
		return candidates[0].Path, nil
	}

	options := make([]huh.Option[string], len(candidates))
	for i, c := range candidates {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%d steps)", c.Title, c.Steps), c.Path)
	}

	choice := candidates[0].Path
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which walkthrough?").
				Options(options...).
				Value(&choice),
		),
	).WithTheme(huh.ThemeDracula())
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return "", err
	}
	return choice, nil
}

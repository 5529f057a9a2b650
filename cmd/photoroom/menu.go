package main

import (
	"context"
	"errors"
	"fmt"

	"photoroom/ask"
)

// Main menu actions
const (
	actionRemoveBackground = "removeBackground"
	actionImageEditing     = "imageEditing"
	actionAccount          = "accountDetails"
	actionManageKeys       = "manageApiKeys"
	actionExit             = "exit"
)

func menuQuestion(hasKey bool) ask.Question {
	def := actionRemoveBackground
	if !hasKey {
		def = actionManageKeys
	}
	return ask.Question{
		Kind:    ask.KindSelect,
		Name:    "action",
		Label:   "What would you like to do?",
		Default: def,
		Choices: []ask.Choice{
			{Message: "🖼️  Remove Background", Name: actionRemoveBackground, Disabled: !hasKey},
			{Message: "✨ Image Editing", Name: actionImageEditing, Disabled: !hasKey},
			{Message: "💳 Account details", Name: actionAccount, Disabled: !hasKey},
			{Message: "🔑 Manage API keys", Name: actionManageKeys},
			{Message: "👋 Exit", Name: actionExit},
		},
	}
}

func (a *app) printStatus() {
	fmt.Fprintln(a.out)
	colorBoldBlue.Fprintln(a.out, "📸 PhotoRoom CLI")
	if k, ok := a.keys.Active(); ok {
		fmt.Fprintf(a.out, "Active key: %s (%s)\n", colorCyan.Sprint(k.Name), k.Type.Title())
	} else {
		colorYellow.Fprintln(a.out, "No active API key. Add one under 'Manage API keys'.")
	}
	if a.dryRun {
		printDryRunBanner(a.out)
	}
}

// menu loops until the user exits. Errors inside a command are shown and
// the menu comes back; cancellation ends the loop.
func (a *app) menu(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		a.printStatus()
		answers, err := a.engine.AskAll([]ask.Question{menuQuestion(a.canCallAPI())})
		if err != nil {
			return err
		}

		action := answers.String("action")
		if action == actionExit {
			fmt.Fprintln(a.out, "\nGoodbye!")
			return nil
		}

		err = a.dispatch(ctx, action)
		switch {
		case err == nil:
		case errors.Is(err, ask.ErrCancelled), errors.Is(err, context.Canceled):
			return err
		default:
			printFailure(a.out, err)
		}
	}
}

func (a *app) dispatch(ctx context.Context, action string) error {
	switch action {
	case actionRemoveBackground:
		return a.removeBackground(ctx)
	case actionImageEditing:
		return a.imageEditing(ctx)
	case actionAccount:
		return a.showAccount(ctx)
	case actionManageKeys:
		return a.manageKeys()
	}
	return fmt.Errorf("unknown action %q", action)
}

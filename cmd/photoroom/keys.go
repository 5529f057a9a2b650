package main

import (
	"fmt"
	"io"

	"photoroom/ask"
	"photoroom/keystore"
)

const (
	choiceAdd  = "__add__"
	choiceBack = "__back__"
)

func keyStatus(k keystore.Key) string {
	if k.Active {
		return colorGreen.Sprint("Active")
	}
	return colorDim.Sprint("Inactive")
}

func printKeys(w io.Writer, keys []keystore.Key) {
	if len(keys) == 0 {
		colorDim.Fprintln(w, "  No API keys stored yet")
		return
	}
	rows := [][]string{{colorBold.Sprint("Name"), colorBold.Sprint("Type"), colorBold.Sprint("Status")}}
	for _, k := range keys {
		rows = append(rows, []string{k.Name, k.Type.Title(), keyStatus(k)})
	}
	fmt.Fprint(w, formatTable(rows))
}

func keyListQuestion(keys []keystore.Key) ask.Question {
	choices := make([]ask.Choice, 0, len(keys)+2)
	for _, k := range keys {
		state := "Inactive"
		if k.Active {
			state = "Active"
		}
		choices = append(choices, ask.Choice{
			Message: fmt.Sprintf("%s (%s) - %s", k.Name, k.Type.Title(), state),
			Name:    k.ID,
		})
	}
	choices = append(choices,
		ask.Choice{Message: "➕ Add new API key", Name: choiceAdd},
		ask.Choice{Message: "⬅️  Back to main menu", Name: choiceBack},
	)
	return ask.Question{
		Kind:    ask.KindSelect,
		Name:    "key",
		Label:   "Select a key to manage",
		Default: choiceAdd,
		Choices: choices,
	}
}

func addKeyQuestions(store *keystore.Store) []ask.Question {
	branch := func(typ keystore.Type) []ask.Question {
		return []ask.Question{
			{
				Kind:     ask.KindInput,
				Name:     "name",
				Label:    "Key name",
				Default:  store.SuggestName(typ),
				Required: true,
			},
			{
				Kind:     ask.KindSecret,
				Name:     "secret",
				Label:    "API key",
				Hint:     "Find it in your PhotoRoom dashboard",
				Required: true,
				Validate: validateKeySecret,
			},
			{
				Kind:    ask.KindConfirm,
				Name:    "activate",
				Label:   "Make this the active key?",
				Default: true,
			},
		}
	}
	return []ask.Question{{
		Kind:    ask.KindSelect,
		Name:    "type",
		Label:   "Key type",
		Default: string(keystore.Sandbox),
		Choices: []ask.Choice{
			{Message: "Sandbox (free, watermarked results)", Name: string(keystore.Sandbox)},
			{Message: "Live (production, uses credits)", Name: string(keystore.Live)},
		},
		Subquestions: map[string][]ask.Question{
			string(keystore.Sandbox): branch(keystore.Sandbox),
			string(keystore.Live):    branch(keystore.Live),
		},
	}}
}

func keyActionQuestion(k keystore.Key) ask.Question {
	toggle := ask.Choice{Message: "Activate", Name: "activate"}
	if k.Active {
		toggle = ask.Choice{Message: "Deactivate", Name: "deactivate"}
	}
	return ask.Question{
		Kind:  ask.KindSelect,
		Name:  "action",
		Label: fmt.Sprintf("What do you want to do with %q?", k.Name),
		Choices: []ask.Choice{
			toggle,
			{Message: "Remove", Name: "remove"},
			{Message: "Back", Name: choiceBack},
		},
		Default: toggle.Name,
	}
}

// manageKeys runs the key management loop until the user goes back
func (a *app) manageKeys() error {
	for {
		printHeader(a.out, "🔑 API Keys")
		if k, ok := a.keys.Active(); ok && k.ID == keystore.EnvKeyID {
			colorYellow.Fprintf(a.out, "  %s is set and overrides the stored keys\n", keystore.EnvVar)
		}
		keys := a.keys.List()
		printKeys(a.out, keys)

		answers, err := a.engine.AskAll([]ask.Question{keyListQuestion(keys)})
		if err != nil {
			return err
		}

		switch id := answers.String("key"); id {
		case choiceBack:
			return nil
		case choiceAdd:
			err = a.addKey()
		default:
			err = a.keyActions(id)
		}
		if err != nil {
			return err
		}
	}
}

func (a *app) addKey() error {
	answers, err := a.engine.AskAll(addKeyQuestions(a.keys))
	if err != nil {
		return err
	}

	name := answers.String("name")
	id, err := a.keys.Add(name, keystore.Type(answers.String("type")), answers.String("secret"), answers.Bool("activate"))
	if err != nil {
		return fmt.Errorf("save key: %w", err)
	}
	a.log.Debug("stored API key", "id", id)
	colorGreen.Fprintf(a.out, "✅ Added %q\n", name)
	return nil
}

func (a *app) keyActions(id string) error {
	k, ok := a.keys.Get(id)
	if !ok {
		return fmt.Errorf("unknown key %q", id)
	}

	answers, err := a.engine.AskAll([]ask.Question{keyActionQuestion(k)})
	if err != nil {
		return err
	}

	switch answers.String("action") {
	case "activate":
		if _, err := a.keys.Activate(id); err != nil {
			return fmt.Errorf("activate key: %w", err)
		}
		colorGreen.Fprintf(a.out, "✅ %q is now the active key\n", k.Name)
	case "deactivate":
		if _, err := a.keys.Deactivate(id); err != nil {
			return fmt.Errorf("deactivate key: %w", err)
		}
		colorYellow.Fprintf(a.out, "%q deactivated\n", k.Name)
	case "remove":
		confirm, err := a.engine.AskAll([]ask.Question{{
			Kind:  ask.KindConfirm,
			Name:  "confirm",
			Label: fmt.Sprintf("Remove %q? This cannot be undone", k.Name),
		}})
		if err != nil {
			return err
		}
		if !confirm.Bool("confirm") {
			return nil
		}
		if _, err := a.keys.Delete(id); err != nil {
			return fmt.Errorf("remove key: %w", err)
		}
		colorGreen.Fprintf(a.out, "✅ Removed %q\n", k.Name)
	}
	return nil
}

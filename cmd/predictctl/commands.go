package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"salary-predictor/internal/form"
	"salary-predictor/internal/profile"
	"salary-predictor/internal/terminal"
)

// fieldFlags maps predict flags to the profile field they set.
var fieldFlags = []struct {
	name  string
	field profile.Field
}{
	{"country", profile.FieldCountry},
	{"ed-level", profile.FieldEdLevel},
	{"years", profile.FieldYearsCodePro},
	{"dev-type", profile.FieldDevType},
	{"remote-work", profile.FieldRemoteWork},
	{"age-group", profile.FieldAgeGroup},
	{"main-branch", profile.FieldMainBranch},
}

// =============================================================================
// OPTIONS COMMAND
// =============================================================================

func optionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "options",
		Usage: "List the accepted values of every field",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format (text, json)",
			},
		},
		Action: func(c *cli.Context) error {
			return writeOptions(os.Stdout, c.String("format"))
		},
	}
}

func writeOptions(w io.Writer, format string) error {
	switch format {
	case "json":
		out := make(map[string][]string)
		for _, f := range profile.Fields() {
			values := []string{}
			for _, opt := range f.Options() {
				values = append(values, opt.Value)
			}
			out[f.String()] = values
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)

	case "text":
		for _, flag := range fieldFlags {
			f := flag.field
			fmt.Fprintf(w, "%s (--%s)\n", f.Label(), flag.name)
			if !f.Enumerated() {
				fmt.Fprintf(w, "  free text, %s\n", f.Placeholder())
				continue
			}
			def := profile.DefaultState().Get(f)
			for _, opt := range f.Options() {
				marker := " "
				if opt.Value == def {
					marker = "*"
				}
				fmt.Fprintf(w, " %s %s\n", marker, opt.Value)
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// =============================================================================
// PREDICT COMMAND
// =============================================================================

func predictCommand() *cli.Command {
	flags := make([]cli.Flag, 0, len(fieldFlags)+1)
	for _, ff := range fieldFlags {
		flags = append(flags, &cli.StringFlag{
			Name:  ff.name,
			Value: profile.DefaultState().Get(ff.field),
			Usage: ff.field.Label(),
		})
	}
	flags = append(flags, &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format (text, json)",
	})

	return &cli.Command{
		Name:  "predict",
		Usage: "Submit a profile once and print the predicted salary",
		Flags: flags,
		Action: func(c *cli.Context) error {
			client, err := newClient(c)
			if err != nil {
				return err
			}

			ctrl := form.NewController(client)
			defer ctrl.Close()

			for _, ff := range fieldFlags {
				if !c.IsSet(ff.name) {
					continue
				}
				if _, err := ctrl.UpdateField(ff.field, c.String(ff.name)); err != nil {
					return fmt.Errorf("--%s: %w", ff.name, err)
				}
			}

			snap, err := ctrl.Submit(c.Context)
			if err != nil {
				return err
			}

			if err := writeResult(os.Stdout, c.String("format"), snap); err != nil {
				return err
			}
			if snap.Error != "" {
				return cli.Exit("", 2)
			}
			return nil
		},
	}
}

type predictOutput struct {
	Profile         profile.FormState `json:"profile"`
	PredictedSalary string            `json:"predicted_salary,omitempty"`
	Display         string            `json:"display,omitempty"`
	Error           string            `json:"error,omitempty"`
}

func writeResult(w io.Writer, format string, snap form.Snapshot) error {
	switch format {
	case "json":
		out := predictOutput{Profile: snap.Values, Error: snap.Error}
		if snap.Prediction.Valid {
			out.PredictedSalary = snap.Prediction.Decimal.String()
			out.Display = "$" + snap.FormattedPrediction()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "text":
		_, err := fmt.Fprintln(w, terminal.Result(snap))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// =============================================================================
// PROMPT COMMAND
// =============================================================================

func promptCommand() *cli.Command {
	return &cli.Command{
		Name:  "prompt",
		Usage: "Fill in the form interactively",
		Action: func(c *cli.Context) error {
			client, err := newClient(c)
			if err != nil {
				return err
			}

			ctrl := form.NewController(client)
			defer ctrl.Close()

			err = terminal.Run(c.Context, ctrl, terminal.NewSurveyPrompter(os.Stdout))
			if errors.Is(err, terminal.ErrAborted) {
				return nil
			}
			return err
		},
	}
}

// =============================================================================
// PING COMMAND
// =============================================================================

func pingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the prediction service is reachable",
		Action: func(c *cli.Context) error {
			client, err := newClient(c)
			if err != nil {
				return err
			}

			msg, err := client.Ping(c.Context)
			if err != nil {
				return fmt.Errorf("%s: %w", client.BaseURL(), err)
			}
			fmt.Fprintf(os.Stdout, "%s: %s\n", client.BaseURL(), strings.TrimSpace(msg))
			return nil
		},
	}
}

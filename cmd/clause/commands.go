package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-clause/pkg/clause"
)

type renderFlags struct {
	questionnaire string
	answers       []string
	fields        []string
	typed         string
	output        string
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.questionnaire, "questionnaire", "q", "", "questionnaire file (.json, .yaml)")
	cmd.Flags().StringArrayVarP(&f.answers, "answer", "a", nil, "answer as section=option (repeatable)")
	cmd.Flags().StringArrayVarP(&f.fields, "field", "f", nil, "field value as id=text (repeatable)")
	cmd.Flags().StringVar(&f.typed, "typed", "", "previously rendered HTML to collect typed field values from")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
}

// render runs one render cycle over the template file at path.
func (c *cli) render(cmd *cobra.Command, path string, f *renderFlags) (string, error) {
	template, err := readInput(cmd, path)
	if err != nil {
		return "", err
	}
	q, err := loadQuestionnaire(f.questionnaire)
	if err != nil {
		return "", err
	}
	overrides, err := parsePairs(f.answers)
	if err != nil {
		return "", err
	}
	values, err := parsePairs(f.fields)
	if err != nil {
		return "", err
	}

	prior := clause.NewFieldValues(values)
	if f.typed != "" {
		typedHTML, err := readInput(cmd, f.typed)
		if err != nil {
			return "", err
		}
		collected, err := clause.CollectFieldValues(string(typedHTML))
		if err != nil {
			return "", err
		}
		prior = collected.Merge(prior)
	}

	answers := clause.DefaultAnswers(q).With(overrides)
	out, kept := c.engine.RenderWithFields(string(template), q.Conditionals, answers, prior)
	c.logger.WithFields(clause.Fields{"template": path, "answers": len(answers), "fields_kept": len(kept)}).Debug("Rendered")
	return out, nil
}

func newRenderCommand(c *cli) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render <template.html|->",
		Short: "Render a template with questionnaire answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.render(cmd, args[0], f)
			if err != nil {
				return err
			}
			return writeOutput(cmd, f.output, out)
		},
	}
	f.register(cmd)
	return cmd
}

func newExportCommand(c *cli) *cobra.Command {
	f := &renderFlags{}
	var target, title string
	cmd := &cobra.Command{
		Use:   "export <template.html|->",
		Short: "Render a template and wrap it as a print or Word document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := clause.ParseExportTarget(target)
			if err != nil {
				return err
			}
			out, err := c.render(cmd, args[0], f)
			if err != nil {
				return err
			}
			return writeOutput(cmd, f.output, clause.Export(t, out, title))
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&target, "target", "print", "print or word")
	cmd.Flags().StringVar(&title, "title", "", "document title")
	return cmd
}

func newDetectCommand(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "detect <template.html|->",
		Short: "List the conditional and field markers of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			conds := clause.DetectConditionalIDs(string(data))
			fields := clause.DetectFields(string(data))

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{"conditionals": conds, "fields": fields})
			}
			for _, id := range conds {
				fmt.Fprintf(w, "cond\t%s\n", id)
			}
			for _, ref := range fields {
				fmt.Fprintf(w, "field\t%s\t%s\n", ref.ID, ref.Hint)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newImportCommand(c *cli) *cobra.Command {
	var output, questionnaireOut string
	cmd := &cobra.Command{
		Use:   "import <contract.docx>",
		Short: "Convert a .docx contract into marked HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			html, err := c.engine.ImportDocx(data)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd, output, html); err != nil {
				return err
			}
			if questionnaireOut == "" {
				return nil
			}
			q := clause.NewQuestionnaire()
			q.SyncConditionals(html)
			serialized, err := q.Serialize()
			if err != nil {
				return err
			}
			return writeOutput(cmd, questionnaireOut, serialized)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&questionnaireOut, "questionnaire-out", "", "also write a starter questionnaire for the conditionals found")
	return cmd
}

func newValidateCommand(c *cli) *cobra.Command {
	var questionnaire string
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate <template.html|->",
		Short: "Report questionnaire problems against a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			q, err := loadQuestionnaire(questionnaire)
			if err != nil {
				return err
			}

			issues := clause.Validate(q, string(data))
			for _, issue := range issues {
				fmt.Fprintln(cmd.OutOrStdout(), issue.String())
			}
			if len(issues) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no issues")
				return nil
			}
			if strict {
				return &clause.ValidationError{Issues: issues}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&questionnaire, "questionnaire", "q", "", "questionnaire file (.json, .yaml)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when issues are found")
	return cmd
}

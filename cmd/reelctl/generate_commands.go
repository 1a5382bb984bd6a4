package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelctl/internal/generate"
	"reelctl/internal/reel"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate script drafts through the webhook",
	}
	cmd.AddCommand(newGenerateTranscriptCommand(ctx))
	cmd.AddCommand(newGenerateQuestionsCommand(ctx))
	cmd.AddCommand(newGenerateAnswerCommand(ctx))
	cmd.AddCommand(newGenerateThemeCommand(ctx))
	return cmd
}

// transcriptFlags collect the transcript source and publishing targets.
type transcriptFlags struct {
	text    string
	file    string
	targets []string
}

func (f *transcriptFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.text, "text", "t", "", "Transcript text")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", `Read the transcript from a file ("-" for stdin)`)
	cmd.Flags().StringArrayVar(&f.targets, "target", []string{"reel"}, "Target platform (repeatable): reel, tiktok, shorts, threads")
}

func (f *transcriptFlags) resolve(cmd *cobra.Command) (string, reel.Targets, error) {
	text := f.text
	switch {
	case f.file == "-":
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", nil, fmt.Errorf("read transcript: %w", err)
		}
		text = string(raw)
	case f.file != "":
		raw, err := os.ReadFile(f.file)
		if err != nil {
			return "", nil, fmt.Errorf("read transcript: %w", err)
		}
		text = string(raw)
	}
	targets, err := reel.NewTargets(f.targets...)
	if err != nil {
		return "", nil, err
	}
	return text, targets, nil
}

func newGenerateTranscriptCommand(ctx *commandContext) *cobra.Command {
	var flags transcriptFlags
	var template string
	var save bool
	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Generate a draft from a transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, targets, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			kind, err := reel.ParseTemplate(template)
			if err != nil {
				return err
			}
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			res, err := cl.generator().Generate(cmd.Context(), generate.Request{Transcript: text, Template: kind, Targets: targets})
			if err != nil {
				return err
			}
			return finishGeneration(cmd, cl, res, save)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&template, "template", "prep", "Template: prep, story, howto")
	cmd.Flags().BoolVar(&save, "save", false, "Also save the draft as an editable script")
	return cmd
}

func newGenerateQuestionsCommand(ctx *commandContext) *cobra.Command {
	var flags transcriptFlags
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Ask the clarifying questions of the empathy template",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, targets, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			questions, err := cl.generator().Questions(cmd.Context(), text, targets)
			if err != nil {
				return err
			}
			if asJSON {
				if questions == nil {
					questions = []reel.Question{}
				}
				return writeJSON(cmd, questions)
			}
			out := cmd.OutOrStdout()
			for i, q := range questions {
				fmt.Fprintf(out, "Q%d. %s\n", i+1, q.Question)
				if q.Purpose != "" {
					fmt.Fprintf(out, "    (%s)\n", q.Purpose)
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print questions as JSON (input for generate answer)")
	return cmd
}

func newGenerateAnswerCommand(ctx *commandContext) *cobra.Command {
	var flags transcriptFlags
	var questionsFile string
	var answers []string
	var save bool
	cmd := &cobra.Command{
		Use:   "answer",
		Short: "Generate an empathy draft from answered questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, targets, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			if questionsFile == "" {
				return fmt.Errorf("--questions is required (write it with `reelctl generate questions --json`)")
			}
			raw, err := os.ReadFile(questionsFile)
			if err != nil {
				return fmt.Errorf("read questions: %w", err)
			}
			var questions []reel.Question
			if err := json.Unmarshal(raw, &questions); err != nil {
				return fmt.Errorf("parse questions: %w", err)
			}
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			res, err := cl.generator().Answer(cmd.Context(), text, targets, questions, answers)
			if err != nil {
				return err
			}
			return finishGeneration(cmd, cl, res, save)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&questionsFile, "questions", "q", "", "JSON file of questions")
	cmd.Flags().StringArrayVarP(&answers, "answer", "a", nil, "Answer, one per question in order (repeatable)")
	cmd.Flags().BoolVar(&save, "save", false, "Also save the draft as an editable script")
	return cmd
}

func newGenerateThemeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "theme <theme>...",
		Short: "Ask the render backend to write a script for a theme",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			script, err := cl.generator().FromTheme(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s, %d scenes)\n", script.ID, script.Name, len(script.Scenes))
			return nil
		},
	}
}

func finishGeneration(cmd *cobra.Command, cl *clients, res generate.Result, save bool) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, strings.TrimRight(res.Generation.Markup, "\n"))
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved history entry %s\n", res.Item.ID)
	if !save {
		return nil
	}
	script, err := cl.store.SaveScript(cmd.Context(), res.Generation.Script.ToScript("", time.Now()))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved script %s\n", script.ID)
	return nil
}

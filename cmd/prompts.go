package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mirrorsensei/sensei/internal/auth"
	"github.com/mirrorsensei/sensei/internal/bundle"
	"github.com/mirrorsensei/sensei/internal/session"
	"github.com/mirrorsensei/sensei/internal/study"
	"github.com/mirrorsensei/sensei/internal/tutor"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "View and manage the admin prompts",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every stored category and level prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		d, err := buildDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		b, err := bundle.Export(cmd.Context(), d.prompts, time.Now())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return bundle.Encode(out, b, bundle.JSON)
		}

		if len(b.CategoryPrompts) == 0 && len(b.LevelPrompts) == 0 {
			fmt.Fprintln(out, "No prompts stored. The built-in instructions apply.")
			return nil
		}

		sep := strings.Repeat("─", 80)
		fmt.Fprintln(out, "Category Prompts")
		fmt.Fprintln(out, sep)
		for _, p := range b.CategoryPrompts {
			fmt.Fprintf(out, "%-28s  %s\n", study.CategoryPromptKey(p.Category, p.SubCategory), truncate(oneLine(p.Prompt), 50))
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Level Prompts")
		fmt.Fprintln(out, sep)
		for _, p := range b.LevelPrompts {
			fmt.Fprintf(out, "%-28s  %s\n", study.LevelPromptKey(p.Level), truncate(oneLine(p.Prompt), 50))
		}
		return nil
	},
}

var promptsSetCmd = &cobra.Command{
	Use:   "set <category> <sub-category> <prompt>",
	Short: "Overwrite the prompt for a category and sub-category",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := study.ParseCategory(args[0])
		if err != nil {
			return err
		}
		if strings.TrimSpace(args[1]) == "" {
			return fmt.Errorf("sub-category must not be empty")
		}

		d, sess, err := adminDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.service.SaveCategoryPrompt(cmd.Context(), sess, category, args[1], args[2]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", study.CategoryPromptKey(category, args[1]))
		return nil
	},
}

var promptsSetLevelCmd = &cobra.Command{
	Use:   "set-level <level> <prompt>",
	Short: "Overwrite the prompt for a difficulty level",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := parseLevelArg(args[0])
		if err != nil {
			return err
		}

		d, sess, err := adminDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.service.SaveLevelPrompt(cmd.Context(), sess, level, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", study.LevelPromptKey(level))
		return nil
	},
}

var promptsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every prompt to a versioned JSON or YAML bundle",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		rawFormat, _ := cmd.Flags().GetString("format")

		format := bundle.JSON
		switch {
		case cmd.Flags().Changed("format"):
			f, err := bundle.ParseFormat(rawFormat)
			if err != nil {
				return err
			}
			format = f
		case output != "":
			format = bundle.FormatFromPath(output)
		}

		d, err := buildDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		b, err := bundle.Export(cmd.Context(), d.prompts, time.Now())
		if err != nil {
			return err
		}

		if output == "" {
			return bundle.Encode(cmd.OutOrStdout(), b, format)
		}
		var buf bytes.Buffer
		if err := bundle.Encode(&buf, b, format); err != nil {
			return err
		}
		if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write bundle: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d category and %d level prompts to %s\n",
			len(b.CategoryPrompts), len(b.LevelPrompts), output)
		return nil
	},
}

var promptsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load prompts from a bundle, overwriting matching entries",
	Long:  "Load prompts from a bundle file (use - for stdin). Entries not in the bundle are left unchanged.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := readInput(cmd, path)
		if err != nil {
			return err
		}

		format := bundle.FormatFromPath(path)
		if cmd.Flags().Changed("format") {
			raw, _ := cmd.Flags().GetString("format")
			if format, err = bundle.ParseFormat(raw); err != nil {
				return err
			}
		}

		b, err := bundle.Decode(data, format)
		if err != nil {
			return err
		}

		// The signed-in session only gates the import.
		d, _, err := adminDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := bundle.Import(cmd.Context(), d.prompts, b)
		if err != nil {
			return err
		}
		d.log.Info("prompt bundle imported", "path", path, "version", b.Version,
			"category_prompts", res.CategoryPrompts, "level_prompts", res.LevelPrompts)
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d category and %d level prompts\n", res.CategoryPrompts, res.LevelPrompts)
		return nil
	},
}

// adminDeps builds the dependencies and signs a session in with --username
// and --passcode.
func adminDeps(cmd *cobra.Command) (*deps, *session.Session, error) {
	username, _ := cmd.Flags().GetString("username")
	passcode, _ := cmd.Flags().GetString("passcode")

	d, err := buildDeps(cmd, depsOptions{withLLM: true})
	if err != nil {
		return nil, nil, err
	}

	sess := session.New(uuid.NewString(), auth.NewPlaceholder())
	sess.OpenLogin()
	ok, err := sess.Login(cmd.Context(), auth.Credentials{Username: username, Passcode: passcode})
	if err != nil || !ok {
		d.Close()
		if err != nil {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%s: %w", auth.InvalidCredentialsMessage, tutor.ErrUnauthorized)
	}
	return d, sess, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	return data, nil
}

func init() {
	promptsListCmd.Flags().Bool("json", false, "Print the prompts as a JSON bundle")

	promptsExportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	promptsExportCmd.Flags().StringP("format", "f", "json", "Bundle format: json or yaml (default from the file extension)")
	promptsImportCmd.Flags().StringP("format", "f", "", "Bundle format: json or yaml (default from the file extension)")

	for _, c := range []*cobra.Command{promptsSetCmd, promptsSetLevelCmd, promptsImportCmd} {
		c.Flags().StringP("username", "u", "", "Admin username")
		c.Flags().StringP("passcode", "p", "", "Admin passcode")
	}

	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsSetCmd)
	promptsCmd.AddCommand(promptsSetLevelCmd)
	promptsCmd.AddCommand(promptsExportCmd)
	promptsCmd.AddCommand(promptsImportCmd)
}

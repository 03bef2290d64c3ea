package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mirrorsensei/sensei/internal/auth"
	"github.com/mirrorsensei/sensei/internal/session"
	"github.com/mirrorsensei/sensei/internal/study"
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Generate study content for a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := sessionFromFlags(cmd)
		if err != nil {
			return err
		}

		d, err := buildDeps(cmd, depsOptions{withLLM: true})
		if err != nil {
			return err
		}
		defer d.Close()
		d.warnIfNoLLM()

		text, err := d.service.Ask(cmd.Context(), sess, strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("ask: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var translateCmd = &cobra.Command{
	Use:   "translate <text>",
	Short: "Translate study material between English and Bengali",
	Long: "Translate text written in --lang into the other language:\n" +
		"EN text becomes Bengali, BN text becomes English.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := sessionFromFlags(cmd)
		if err != nil {
			return err
		}

		d, err := buildDeps(cmd, depsOptions{withLLM: true})
		if err != nil {
			return err
		}
		defer d.Close()
		d.warnIfNoLLM()

		out, err := d.service.Translate(cmd.Context(), sess, strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("translate: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

// sessionFromFlags builds a throwaway session with the study selection
// given by --category, --level and --lang.
func sessionFromFlags(cmd *cobra.Command) (*session.Session, error) {
	sess := session.New(uuid.NewString(), auth.NewPlaceholder())

	if cmd.Flags().Lookup("category") != nil {
		raw, _ := cmd.Flags().GetString("category")
		c, err := study.ParseCategory(raw)
		if err != nil {
			return nil, err
		}
		sess.SetCategory(c)

		raw, _ = cmd.Flags().GetString("level")
		l, err := parseLevelArg(raw)
		if err != nil {
			return nil, err
		}
		sess.SetLevel(l)
	}

	raw, _ := cmd.Flags().GetString("lang")
	lang, err := study.ParseLanguage(strings.ToUpper(raw))
	if err != nil {
		return nil, err
	}
	sess.SetLanguage(lang)
	return sess, nil
}

// parseLevelArg accepts "Level 2" as well as the shorthand "2".
func parseLevelArg(s string) (study.Level, error) {
	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		s = "Level " + s
	}
	return study.ParseLevel(s)
}

func init() {
	askCmd.Flags().StringP("category", "c", string(study.CategoryPoem), "Study category (Poem, Drama, Literature, Exam)")
	askCmd.Flags().StringP("level", "l", string(study.Level1), `Difficulty ("Level 1".."Level 3", or just 1..3)`)
	askCmd.Flags().String("lang", string(study.English), "Answer language (EN or BN)")

	translateCmd.Flags().String("lang", string(study.English), "Language of the input text (EN or BN)")
}

package cli

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/vocaquiz/vocaquiz/internal/question"
	"github.com/vocaquiz/vocaquiz/internal/vocab"
)

// newGenCmd builds a command that generates questions from a vocabulary CSV
// and prints them as JSON. Handy for checking a dataset before hosting a game.
func newGenCmd() *cobra.Command {
	var (
		file  string
		mode  string
		count int
		seed  int64
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate quiz questions from a vocabulary CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			table, err := vocab.ReadTable(f)
			if err != nil {
				return err
			}

			var rng *rand.Rand
			if seed != 0 {
				rng = rand.New(rand.NewSource(seed))
			}

			g := question.NewGenerator(question.Config{Rand: rng})
			questions := g.Generate(table, question.Mode(mode), count)
			if len(questions) == 0 {
				return fmt.Errorf("no questions could be generated from %s", file)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(questions)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the vocabulary CSV")
	cmd.Flags().StringVar(&mode, "mode", string(question.ModeChineseToEnglish), "question direction")
	cmd.Flags().IntVar(&count, "count", 10, "number of questions")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 means random)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mind-engage/coeus/internal/sequencer"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a small demo curriculum",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		levels, _ := cmd.Flags().GetInt("levels")
		lessons, _ := cmd.Flags().GetInt("lessons")
		return seedDemo(cmd.Context(), sequencer.New(db), levels, lessons)
	},
}

func init() {
	seedCmd.Flags().Int("levels", 2, "number of levels")
	seedCmd.Flags().Int("lessons", 3, "lessons per level")
}

// seedDemo creates addition drills: level L, lesson K asks for sums of
// L*10+K with small addends.
func seedDemo(ctx context.Context, seq *sequencer.Sequencer, levels, lessons int) error {
	for l := 1; l <= levels; l++ {
		course, err := seq.CreateCourse(ctx, fmt.Sprintf("Level %d", l))
		if err != nil {
			return err
		}
		for k := 1; k <= lessons; k++ {
			base := l*10 + k
			content, err := seq.Insert(ctx, course.ID,
				fmt.Sprintf("Adding to %d", base),
				fmt.Sprintf("Practice adding small numbers to %d.", base))
			if err != nil {
				return err
			}
			for n := 1; n <= 5; n++ {
				sum := base + n
				_, err := seq.CreateQuestion(ctx, content.ID, fmt.Sprintf("%d + %d = ?", base, n), []sequencer.OptionInput{
					{Text: fmt.Sprint(sum), IsCorrect: true},
					{Text: fmt.Sprint(sum + 1)},
					{Text: fmt.Sprint(sum - 1)},
				})
				if err != nil {
					return err
				}
			}
		}
		log.Printf("seeded %s (%d lessons)", course.Title, lessons)
	}
	return nil
}

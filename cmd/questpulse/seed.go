package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/questpulse/questpulse/internal/events"
	"github.com/questpulse/questpulse/internal/types"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with demo data",
	Long:  `Insert a small demo data set (chapter, quests, today's tasks, events, reflections) for trying out the monitor locally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		now := time.Now()

		chapterDeadline := now.AddDate(0, 1, 0)
		chapter := &types.Chapter{
			ID:        uuid.New().String(),
			Title:     "Ship the side project",
			Deadline:  &chapterDeadline,
			CreatedAt: now,
		}
		if err := store.CreateChapter(ctx, chapter); err != nil {
			return err
		}

		questDeadline := now.AddDate(0, 0, 2)
		quest := &types.Quest{
			ID:        uuid.New().String(),
			Title:     "Finish the landing page",
			Status:    types.QuestStatusActive,
			ChapterID: chapter.ID,
			Progress:  20,
			Deadline:  &questDeadline,
			CreatedAt: now,
		}
		if err := store.CreateQuest(ctx, quest); err != nil {
			return err
		}

		today := now
		yesterday := now.AddDate(0, 0, -1)
		doneAt := now.Add(-90 * time.Minute)

		tasks := []*types.Task{
			{
				ID: uuid.New().String(), Title: "Draft hero copy", Type: types.TaskTypeCreative,
				Status: types.TaskStatusCompleted, QuestID: quest.ID,
				ScheduledFor: &today, CreatedAt: yesterday, CompletedAt: &doneAt,
			},
			{
				ID: uuid.New().String(), Title: "File expense report", Type: types.TaskTypeTax,
				Status: types.TaskStatusOpen,
				ScheduledFor: &today, Deadline: &yesterday, PostponeCount: 2,
				CreatedAt: yesterday,
			},
			{
				ID: uuid.New().String(), Title: "Water the plants", Type: types.TaskTypeMaintenance,
				Status: types.TaskStatusOpen, ScheduledFor: &today, CreatedAt: yesterday,
			},
		}
		for _, t := range tasks {
			if err := store.CreateTask(ctx, t); err != nil {
				return err
			}
		}

		if err := store.AppendEvent(ctx, events.NewTaskCompletedEvent(tasks[0].ID, quest.ID, doneAt)); err != nil {
			return err
		}
		for i := 1; i <= 5; i++ {
			at := now.AddDate(0, 0, -i*2)
			if err := store.AppendEvent(ctx, events.NewTaskCompletedEvent(uuid.New().String(), "", at)); err != nil {
				return err
			}
		}

		reflections := []types.EnergyState{types.EnergyMedium, types.EnergyLow, types.EnergyMedium}
		for i, energy := range reflections {
			r := &types.Reflection{
				ID:          uuid.New().String(),
				EnergyState: energy,
				CreatedAt:   now.AddDate(0, 0, -i),
			}
			if err := store.CreateReflection(ctx, r); err != nil {
				return err
			}
		}

		fmt.Println("Seeded demo data. Try: questpulse check")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

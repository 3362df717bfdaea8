package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/questpulse/questpulse/internal/types"
)

// CreateTask inserts a new task
func (s *SQLiteStorage) CreateTask(ctx context.Context, task *types.Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, type, status, quest_id, scheduled_for, deadline, postpone_count, created_at, completed_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, string(task.Type), string(task.Status), nullString(task.QuestID),
		nullTime(task.ScheduledFor), nullTime(task.Deadline), task.PostponeCount,
		task.CreatedAt, nullTime(task.CompletedAt), nullTime(task.ArchivedAt))
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// UpdateTask rewrites a task's mutable fields
func (s *SQLiteStorage) UpdateTask(ctx context.Context, task *types.Task) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, type = ?, status = ?, quest_id = ?, scheduled_for = ?,
			deadline = ?, postpone_count = ?, completed_at = ?, archived_at = ?
		WHERE id = ?`,
		task.Title, string(task.Type), string(task.Status), nullString(task.QuestID),
		nullTime(task.ScheduledFor), nullTime(task.Deadline), task.PostponeCount,
		nullTime(task.CompletedAt), nullTime(task.ArchivedAt), task.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s not found", task.ID)
	}
	return nil
}

// ListTasks returns all tasks
func (s *SQLiteStorage) ListTasks(ctx context.Context) ([]*types.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, type, status, quest_id, scheduled_for, deadline, postpone_count, created_at, completed_at, archived_at
		FROM tasks ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*types.Task
	for rows.Next() {
		var t types.Task
		var taskType, status string
		var questID sql.NullString
		var scheduled, deadline, completed, archived sql.NullTime
		if err := rows.Scan(&t.ID, &t.Title, &taskType, &status, &questID,
			&scheduled, &deadline, &t.PostponeCount, &t.CreatedAt, &completed, &archived); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t.Type = types.TaskType(taskType)
		t.Status = types.TaskStatus(status)
		t.QuestID = questID.String
		t.ScheduledFor = timePtr(scheduled)
		t.Deadline = timePtr(deadline)
		t.CompletedAt = timePtr(completed)
		t.ArchivedAt = timePtr(archived)
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

// CreateQuest inserts a new quest
func (s *SQLiteStorage) CreateQuest(ctx context.Context, quest *types.Quest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quests (id, title, status, chapter_id, progress, deadline, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		quest.ID, quest.Title, string(quest.Status), nullString(quest.ChapterID), quest.Progress,
		nullTime(quest.Deadline), quest.CreatedAt, nullTime(quest.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to create quest: %w", err)
	}
	return nil
}

// UpdateQuest rewrites a quest's mutable fields
func (s *SQLiteStorage) UpdateQuest(ctx context.Context, quest *types.Quest) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE quests SET title = ?, status = ?, chapter_id = ?, progress = ?, deadline = ?, completed_at = ?
		WHERE id = ?`,
		quest.Title, string(quest.Status), nullString(quest.ChapterID), quest.Progress,
		nullTime(quest.Deadline), nullTime(quest.CompletedAt), quest.ID)
	if err != nil {
		return fmt.Errorf("failed to update quest: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("quest %s not found", quest.ID)
	}
	return nil
}

// ListQuests returns all quests
func (s *SQLiteStorage) ListQuests(ctx context.Context) ([]*types.Quest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, status, chapter_id, progress, deadline, created_at, completed_at
		FROM quests ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	defer rows.Close()

	var quests []*types.Quest
	for rows.Next() {
		var q types.Quest
		var status string
		var chapterID sql.NullString
		var deadline, completed sql.NullTime
		if err := rows.Scan(&q.ID, &q.Title, &status, &chapterID, &q.Progress,
			&deadline, &q.CreatedAt, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan quest: %w", err)
		}
		q.Status = types.QuestStatus(status)
		q.ChapterID = chapterID.String
		q.Deadline = timePtr(deadline)
		q.CompletedAt = timePtr(completed)
		quests = append(quests, &q)
	}
	return quests, rows.Err()
}

// CreateChapter inserts a new chapter
func (s *SQLiteStorage) CreateChapter(ctx context.Context, chapter *types.Chapter) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chapters (id, title, season_id, deadline, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		chapter.ID, chapter.Title, nullString(chapter.SeasonID), nullTime(chapter.Deadline), chapter.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	return nil
}

// ListChapters returns all chapters
func (s *SQLiteStorage) ListChapters(ctx context.Context) ([]*types.Chapter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, season_id, deadline, created_at FROM chapters ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []*types.Chapter
	for rows.Next() {
		var c types.Chapter
		var seasonID sql.NullString
		var deadline sql.NullTime
		if err := rows.Scan(&c.ID, &c.Title, &seasonID, &deadline, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		c.SeasonID = seasonID.String
		c.Deadline = timePtr(deadline)
		chapters = append(chapters, &c)
	}
	return chapters, rows.Err()
}

// CreateSeason inserts a new season
func (s *SQLiteStorage) CreateSeason(ctx context.Context, season *types.Season) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO seasons (id, title, starts_at, ends_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		season.ID, season.Title, season.StartsAt, season.EndsAt, season.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create season: %w", err)
	}
	return nil
}

// ListSeasons returns all seasons
func (s *SQLiteStorage) ListSeasons(ctx context.Context) ([]*types.Season, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, starts_at, ends_at, created_at FROM seasons ORDER BY starts_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer rows.Close()

	var seasons []*types.Season
	for rows.Next() {
		var se types.Season
		if err := rows.Scan(&se.ID, &se.Title, &se.StartsAt, &se.EndsAt, &se.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, &se)
	}
	return seasons, rows.Err()
}

// CreateReflection inserts a new reflection
func (s *SQLiteStorage) CreateReflection(ctx context.Context, reflection *types.Reflection) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reflections (id, energy_state, note, created_at)
		VALUES (?, ?, ?, ?)`,
		reflection.ID, string(reflection.EnergyState), reflection.Note, reflection.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reflection: %w", err)
	}
	return nil
}

// RecentReflections returns up to limit reflections, newest first
func (s *SQLiteStorage) RecentReflections(ctx context.Context, limit int) ([]*types.Reflection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, energy_state, note, created_at FROM reflections
		ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reflections: %w", err)
	}
	defer rows.Close()

	var reflections []*types.Reflection
	for rows.Next() {
		var r types.Reflection
		var energy string
		if err := rows.Scan(&r.ID, &energy, &r.Note, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reflection: %w", err)
		}
		r.EnergyState = types.EnergyState(energy)
		reflections = append(reflections, &r)
	}
	return reflections, rows.Err()
}

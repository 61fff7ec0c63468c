package jobs

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "id, run_id, input_path, output_path, format, model_name, language, status, error_kind, error_message, audio_seconds, elapsed_seconds, real_time_factor, word_count, cue_count, created_at, updated_at, started_at, completed_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id           int64
		runID        string
		inputPath    string
		outputPath   sql.NullString
		format       string
		modelName    sql.NullString
		lang         sql.NullString
		statusStr    string
		errorKind    sql.NullString
		errorMessage sql.NullString
		audioSecs    sql.NullFloat64
		elapsedSecs  sql.NullFloat64
		rtf          sql.NullFloat64
		wordCount    sql.NullInt64
		cueCount     sql.NullInt64
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		startedRaw   sql.NullString
		completedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&runID,
		&inputPath,
		&outputPath,
		&format,
		&modelName,
		&lang,
		&statusStr,
		&errorKind,
		&errorMessage,
		&audioSecs,
		&elapsedSecs,
		&rtf,
		&wordCount,
		&cueCount,
		&createdRaw,
		&updatedRaw,
		&startedRaw,
		&completedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:             id,
		RunID:          runID,
		InputPath:      inputPath,
		OutputPath:     outputPath.String,
		Format:         format,
		ModelName:      modelName.String,
		Language:       lang.String,
		Status:         Status(statusStr),
		ErrorKind:      errorKind.String,
		ErrorMessage:   errorMessage.String,
		AudioSeconds:   audioSecs.Float64,
		ElapsedSeconds: elapsedSecs.Float64,
		RealTimeFactor: rtf.Float64,
		WordCount:      wordCount.Int64,
		CueCount:       cueCount.Int64,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			job.StartedAt = &started
		}
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			job.CompletedAt = &completed
		}
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

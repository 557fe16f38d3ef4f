package ideas

const (
	queryInsertHistory = `
		INSERT INTO generation_history (id, account_id, brief, ideas, fallback, created_at)
		VALUES ($1, $2, $3::jsonb, $4::jsonb, $5, $6)
	`

	// keeps the newest $2 entries of one account
	queryTrimHistory = `
		DELETE FROM generation_history
		WHERE account_id = $1
		AND id NOT IN (
			SELECT id FROM generation_history
			WHERE account_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		)
	`

	// keeps the newest $1 entries of every account
	queryPruneHistory = `
		DELETE FROM generation_history
		WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY account_id ORDER BY created_at DESC, id DESC) AS rn
				FROM generation_history
			) ranked
			WHERE ranked.rn > $1
		)
	`

	queryListHistory = `
		SELECT id, account_id, brief, ideas, fallback, created_at
		FROM generation_history
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	queryDeleteSaved = `
		DELETE FROM saved_ideas
		WHERE account_id = $1 AND idea_id = $2
	`

	queryInsertSaved = `
		INSERT INTO saved_ideas (account_id, idea_id, idea)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (account_id, idea_id) DO NOTHING
	`

	queryListSaved = `
		SELECT idea
		FROM saved_ideas
		WHERE account_id = $1
		ORDER BY saved_at, idea_id
	`
)

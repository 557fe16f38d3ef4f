package accounts

const accountColumns = `id, email, provider, provider_id, name, avatar_url, tier, COALESCE(stripe_customer_id, ''), created_at, updated_at`

const (
	queryFindOrCreateByProvider = `
		INSERT INTO accounts (provider, provider_id, email, name, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (provider, provider_id)
		DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = NOW()
		RETURNING ` + accountColumns

	queryFindByID = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`

	queryFindByStripeCustomer = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE stripe_customer_id = $1
	`

	queryUpdateProfile = `
		UPDATE accounts
		SET name = $1, avatar_url = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + accountColumns

	queryUpdateTier = `
		UPDATE accounts
		SET tier = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + accountColumns

	querySetStripeCustomer = `
		UPDATE accounts
		SET stripe_customer_id = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + accountColumns

	// an empty customer id keeps the stored one
	queryApplyTier = `
		UPDATE accounts
		SET tier = $1,
			stripe_customer_id = COALESCE(NULLIF($2, ''), stripe_customer_id),
			updated_at = NOW()
		WHERE id = $3
		RETURNING ` + accountColumns
)

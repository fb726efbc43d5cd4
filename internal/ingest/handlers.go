package ingest

import "fmt"

// handlerSpec binds one operation kind to one table descriptor and the
// extraction function that pulls key and payload column values out of the
// operation's wire payload. This is the table-driven registry the Design
// Note in spec.md calls for: one merge primitive, seven LWW bindings, one
// grow-only binding, one counter binding, generated from data rather than
// duplicated by hand.
type handlerSpec struct {
	descriptor tableDescriptor
	extract    func(payload map[string]any) (keyValues []any, payloadValues []any, err error)
}

var handlerRegistry = map[OperationType]handlerSpec{
	OperationCard: {
		descriptor: tableDescriptor{
			table:      "cards",
			keyColumns: []string{"card_id"},
			payloadColumns: []string{
				"due", "stability", "difficulty", "elapsed_days",
				"scheduled_days", "reps", "lapses", "state", "last_review",
			},
			ownerColumn: "user_id",
			kind:        mergeLWWRegister,
		},
		extract: extractCard,
	},
	OperationCardContent: {
		descriptor: tableDescriptor{
			table:          "card_contents",
			keyColumns:     []string{"card_id"},
			payloadColumns: []string{"front", "back"},
			kind:           mergeLWWRegister,
		},
		extract: extractCardContent,
	},
	OperationCardDeleted: {
		descriptor: tableDescriptor{
			table:          "card_deleted",
			keyColumns:     []string{"card_id"},
			payloadColumns: []string{"deleted"},
			kind:           mergeLWWRegister,
		},
		extract: extractCardFlag("cardId", "deleted"),
	},
	OperationCardBookmarked: {
		descriptor: tableDescriptor{
			table:          "card_bookmarked",
			keyColumns:     []string{"card_id"},
			payloadColumns: []string{"bookmarked"},
			kind:           mergeLWWRegister,
		},
		extract: extractCardFlag("cardId", "bookmarked"),
	},
	OperationCardSuspended: {
		descriptor: tableDescriptor{
			table:          "card_suspended",
			keyColumns:     []string{"card_id"},
			payloadColumns: []string{"suspended"},
			kind:           mergeLWWRegister,
		},
		extract: extractCardFlag("cardId", "suspended"),
	},
	OperationDeck: {
		descriptor: tableDescriptor{
			table:          "decks",
			keyColumns:     []string{"deck_id"},
			payloadColumns: []string{"name", "description", "deleted"},
			ownerColumn:    "user_id",
			kind:           mergeLWWRegister,
		},
		extract: extractDeck,
	},
	OperationReviewLogDeleted: {
		descriptor: tableDescriptor{
			table:          "review_log_deleted",
			keyColumns:     []string{"review_log_id"},
			payloadColumns: []string{"deleted"},
			kind:           mergeLWWRegister,
		},
		extract: extractReviewLogDeleted,
	},
	OperationReviewLog: {
		descriptor: tableDescriptor{
			table:      "review_logs",
			keyColumns: []string{"review_log_id"},
			payloadColumns: []string{
				"card_id", "grade", "state", "due", "stability", "difficulty",
				"elapsed_days", "last_elapsed_days", "scheduled_days", "review", "duration",
			},
			kind: mergeGrowOnlySet,
		},
		extract: extractReviewLog,
	},
	OperationUpdateDeckCard: {
		descriptor: tableDescriptor{
			table:          "card_decks",
			keyColumns:     []string{"card_id", "deck_id"},
			payloadColumns: []string{"cl_count"},
			kind:           mergeCounterBacked,
			counterColumn:  "cl_count",
		},
		extract: extractUpdateDeckCard,
	},
}

func extractCard(payload map[string]any) ([]any, []any, error) {
	id, err := payloadString(payload, "id")
	if err != nil {
		return nil, nil, err
	}
	due, err := payloadOptionalString(payload, "due")
	if err != nil {
		return nil, nil, err
	}
	stability, err := payloadFloat64(payload, "stability")
	if err != nil {
		return nil, nil, err
	}
	difficulty, err := payloadFloat64(payload, "difficulty")
	if err != nil {
		return nil, nil, err
	}
	elapsedDays, err := payloadInt64(payload, "elapsed_days")
	if err != nil {
		return nil, nil, err
	}
	scheduledDays, err := payloadInt64(payload, "scheduled_days")
	if err != nil {
		return nil, nil, err
	}
	reps, err := payloadInt64(payload, "reps")
	if err != nil {
		return nil, nil, err
	}
	lapses, err := payloadInt64(payload, "lapses")
	if err != nil {
		return nil, nil, err
	}
	state, err := payloadInt64(payload, "state")
	if err != nil {
		return nil, nil, err
	}
	lastReview, err := payloadOptionalString(payload, "last_review")
	if err != nil {
		return nil, nil, err
	}
	return []any{id}, []any{due, stability, difficulty, elapsedDays, scheduledDays, reps, lapses, state, lastReview}, nil
}

func extractCardContent(payload map[string]any) ([]any, []any, error) {
	cardID, err := payloadString(payload, "cardId")
	if err != nil {
		return nil, nil, err
	}
	front, err := payloadOptionalString(payload, "front")
	if err != nil {
		return nil, nil, err
	}
	back, err := payloadOptionalString(payload, "back")
	if err != nil {
		return nil, nil, err
	}
	return []any{cardID}, []any{front, back}, nil
}

// extractCardFlag builds an extractor for the family of single-boolean-flag
// LWW tables keyed by cardId (cardDeleted, cardBookmarked, cardSuspended).
func extractCardFlag(keyField, flagField string) func(map[string]any) ([]any, []any, error) {
	return func(payload map[string]any) ([]any, []any, error) {
		key, err := payloadString(payload, keyField)
		if err != nil {
			return nil, nil, err
		}
		flag, err := payloadBool(payload, flagField)
		if err != nil {
			return nil, nil, err
		}
		return []any{key}, []any{flag}, nil
	}
}

func extractDeck(payload map[string]any) ([]any, []any, error) {
	id, err := payloadString(payload, "id")
	if err != nil {
		return nil, nil, err
	}
	name, err := payloadOptionalString(payload, "name")
	if err != nil {
		return nil, nil, err
	}
	description, err := payloadOptionalString(payload, "description")
	if err != nil {
		return nil, nil, err
	}
	deleted, err := payloadBool(payload, "deleted")
	if err != nil {
		return nil, nil, err
	}
	return []any{id}, []any{name, description, deleted}, nil
}

func extractReviewLogDeleted(payload map[string]any) ([]any, []any, error) {
	return extractCardFlag("reviewLogId", "deleted")(payload)
}

func extractReviewLog(payload map[string]any) ([]any, []any, error) {
	id, err := payloadString(payload, "id")
	if err != nil {
		return nil, nil, err
	}
	cardID, err := payloadString(payload, "cardId")
	if err != nil {
		return nil, nil, err
	}
	grade, err := payloadInt64(payload, "grade")
	if err != nil {
		return nil, nil, err
	}
	state, err := payloadInt64(payload, "state")
	if err != nil {
		return nil, nil, err
	}
	due, err := payloadOptionalString(payload, "due")
	if err != nil {
		return nil, nil, err
	}
	stability, err := payloadFloat64(payload, "stability")
	if err != nil {
		return nil, nil, err
	}
	difficulty, err := payloadFloat64(payload, "difficulty")
	if err != nil {
		return nil, nil, err
	}
	elapsedDays, err := payloadInt64(payload, "elapsed_days")
	if err != nil {
		return nil, nil, err
	}
	lastElapsedDays, err := payloadInt64(payload, "last_elapsed_days")
	if err != nil {
		return nil, nil, err
	}
	scheduledDays, err := payloadInt64(payload, "scheduled_days")
	if err != nil {
		return nil, nil, err
	}
	review, err := payloadOptionalString(payload, "review")
	if err != nil {
		return nil, nil, err
	}
	duration, err := payloadInt64(payload, "duration")
	if err != nil {
		return nil, nil, err
	}
	return []any{id}, []any{
		cardID, grade, state, due, stability, difficulty,
		elapsedDays, lastElapsedDays, scheduledDays, review, duration,
	}, nil
}

func extractUpdateDeckCard(payload map[string]any) ([]any, []any, error) {
	cardID, err := payloadString(payload, "cardId")
	if err != nil {
		return nil, nil, err
	}
	deckID, err := payloadString(payload, "deckId")
	if err != nil {
		return nil, nil, err
	}
	clCount, err := payloadInt64(payload, "clCount")
	if err != nil {
		return nil, nil, err
	}
	if clCount < 0 {
		return nil, nil, fmt.Errorf("%w: clCount must be non-negative, got %d", ErrMalformedPayload, clCount)
	}
	return []any{cardID, deckID}, []any{clCount}, nil
}

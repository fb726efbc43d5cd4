package ingest

// User backs the per-user sequence counter the Sequence Allocator reserves
// ranges from. Rows are provisioned by whatever external process creates an
// account; the core never inserts one implicitly.
type User struct {
	ID        string `gorm:"column:id;primaryKey;size:190;not null"`
	NextSeqNo int64  `gorm:"column:next_seq_no;not null;default:1"`
}

// TableName provides the explicit table binding for GORM.
func (User) TableName() string {
	return "users"
}

// Card is the LWW register backing the "card" operation kind. Scheduler
// fields are opaque to this package and stored verbatim.
type Card struct {
	CardID             string  `gorm:"column:card_id;primaryKey;size:190;not null"`
	UserID             string  `gorm:"column:user_id;size:190;not null;index"`
	Due                string  `gorm:"column:due;not null;default:''"`
	Stability          float64 `gorm:"column:stability;not null;default:0"`
	Difficulty         float64 `gorm:"column:difficulty;not null;default:0"`
	ElapsedDays        int64   `gorm:"column:elapsed_days;not null;default:0"`
	ScheduledDays      int64   `gorm:"column:scheduled_days;not null;default:0"`
	Reps               int64   `gorm:"column:reps;not null;default:0"`
	Lapses             int64   `gorm:"column:lapses;not null;default:0"`
	State              int64   `gorm:"column:state;not null;default:0"`
	LastReview         string  `gorm:"column:last_review;not null;default:''"`
	LastModified       int64   `gorm:"column:last_modified;not null;default:0"`
	LastModifiedClient string  `gorm:"column:last_modified_client;size:190;not null;default:''"`
	SeqNo              int64   `gorm:"column:seq_no;not null;default:0"`
}

// TableName provides the explicit table binding for GORM.
func (Card) TableName() string {
	return "cards"
}

// CardContent is the LWW register backing the "cardContent" operation kind.
type CardContent struct {
	CardID             string `gorm:"column:card_id;primaryKey;size:190;not null"`
	Front              string `gorm:"column:front;type:text;not null;default:''"`
	Back               string `gorm:"column:back;type:text;not null;default:''"`
	LastModified       int64  `gorm:"column:last_modified;not null;default:0"`
	LastModifiedClient string `gorm:"column:last_modified_client;size:190;not null;default:''"`
	SeqNo              int64  `gorm:"column:seq_no;not null;default:0"`
}

// TableName provides the explicit table binding for GORM.
func (CardContent) TableName() string {
	return "card_contents"
}

// CardDeleted is the LWW register backing the "cardDeleted" operation kind.
type CardDeleted struct {
	CardID             string `gorm:"column:card_id;primaryKey;size:190;not null"`
	Deleted            bool   `gorm:"column:deleted;not null;default:false"`
	LastModified       int64  `gorm:"column:last_modified;not null;default:0"`
	LastModifiedClient string `gorm:"column:last_modified_client;size:190;not null;default:''"`
	SeqNo              int64  `gorm:"column:seq_no;not null;default:0"`
}

// TableName provides the explicit table binding for GORM.
func (CardDeleted) TableName() string {
	return "card_deleted"
}

// CardBookmarked is the LWW register backing the "cardBookmarked" operation kind.
type CardBookmarked struct {
	CardID             string `gorm:"column:card_id;primaryKey;size:190;not null"`
	Bookmarked         bool   `gorm:"column:bookmarked;not null;default:false"`
	LastModified       int64  `gorm:"column:last_modified;not null;default:0"`
	LastModifiedClient string `gorm:"column:last_modified_client;size:190;not null;default:''"`
	SeqNo              int64  `gorm:"column:seq_no;not null;default:0"`
}

// TableName provides the explicit table binding for GORM.
func (CardBookmarked) TableName() string {
	return "card_bookmarked"
}

// CardSuspended is the LWW register backing the "cardSuspended" operation kind.
type CardSuspended struct {
	CardID             string `gorm:"column:card_id;primaryKey;size:190;not null"`
	Suspended          bool   `gorm:"column:suspended;not null;default:false"`
	LastModified       int64  `gorm:"column:last_modified;not null;default:0"`
	LastModifiedClient string `gorm:"column:last_modified_client;size:190;not null;default:''"`
	SeqNo              int64  `gorm:"column:seq_no;not null;default:0"`
}

// TableName provides the explicit table binding for GORM.
func (CardSuspended) TableName() string {
	return "card_suspended"
}

// Deck is the LWW register backing the "deck" operation kind.
type Deck struct {
	DeckID             string `gorm:"column:deck_id;primaryKey;size:190;not null"`
	UserID             string `gorm:"column:user_id;size:190;not null;index"`
	Name               string `gorm:"column:name;not null;default:''"`
	Description        string `gorm:"column:description;type:text;not null;default:''"`
	Deleted            bool   `gorm:"column:deleted;not null;default:false"`
	LastModified       int64  `gorm:"column:last_modified;not null;default:0"`
	LastModifiedClient string `gorm:"column:last_modified_client;size:190;not null;default:''"`
	SeqNo              int64  `gorm:"column:seq_no;not null;default:0"`
}

// TableName provides the explicit table binding for GORM.
func (Deck) TableName() string {
	return "decks"
}

// ReviewLogDeleted is the LWW register backing the "reviewLogDeleted" operation kind.
type ReviewLogDeleted struct {
	ReviewLogID        string `gorm:"column:review_log_id;primaryKey;size:190;not null"`
	Deleted            bool   `gorm:"column:deleted;not null;default:false"`
	LastModified       int64  `gorm:"column:last_modified;not null;default:0"`
	LastModifiedClient string `gorm:"column:last_modified_client;size:190;not null;default:''"`
	SeqNo              int64  `gorm:"column:seq_no;not null;default:0"`
}

// TableName provides the explicit table binding for GORM.
func (ReviewLogDeleted) TableName() string {
	return "review_log_deleted"
}

// ReviewLog is the grow-only set backing the "reviewLog" operation kind.
// Rows are inserted once and never updated. No UserID column is carried
// here; only cards and decks record an owner.
type ReviewLog struct {
	ReviewLogID        string  `gorm:"column:review_log_id;primaryKey;size:190;not null"`
	CardID             string  `gorm:"column:card_id;size:190;not null;index"`
	Grade              int64   `gorm:"column:grade;not null;default:0"`
	State              int64   `gorm:"column:state;not null;default:0"`
	Due                string  `gorm:"column:due;not null;default:''"`
	Stability          float64 `gorm:"column:stability;not null;default:0"`
	Difficulty         float64 `gorm:"column:difficulty;not null;default:0"`
	ElapsedDays        int64   `gorm:"column:elapsed_days;not null;default:0"`
	LastElapsedDays    int64   `gorm:"column:last_elapsed_days;not null;default:0"`
	ScheduledDays      int64   `gorm:"column:scheduled_days;not null;default:0"`
	Review             string  `gorm:"column:review;not null;default:''"`
	Duration           int64   `gorm:"column:duration;not null;default:0"`
	LastModified       int64   `gorm:"column:last_modified;not null;default:0"`
	LastModifiedClient string  `gorm:"column:last_modified_client;size:190;not null;default:''"`
	SeqNo              int64   `gorm:"column:seq_no;not null;default:0"`
}

// TableName provides the explicit table binding for GORM.
func (ReviewLog) TableName() string {
	return "review_logs"
}

// CardDeck is the counter-backed set membership table backing the
// "updateDeckCard" operation kind. Membership is a read-side derivation
// (clCount even) the core never computes or stores.
type CardDeck struct {
	CardID             string `gorm:"column:card_id;primaryKey;size:190;not null"`
	DeckID             string `gorm:"column:deck_id;primaryKey;size:190;not null"`
	ClCount            int64  `gorm:"column:cl_count;not null;default:0"`
	LastModified       int64  `gorm:"column:last_modified;not null;default:0"`
	LastModifiedClient string `gorm:"column:last_modified_client;size:190;not null;default:''"`
	SeqNo              int64  `gorm:"column:seq_no;not null;default:0"`
}

// TableName provides the explicit table binding for GORM.
func (CardDeck) TableName() string {
	return "card_decks"
}

// SchemaModels returns every table the core owns, in an order safe for
// GORM AutoMigrate (no foreign keys, so order is purely cosmetic here).
func SchemaModels() []any {
	return []any{
		&User{},
		&Card{},
		&CardContent{},
		&CardDeleted{},
		&CardBookmarked{},
		&CardSuspended{},
		&Deck{},
		&ReviewLogDeleted{},
		&ReviewLog{},
		&CardDeck{},
	}
}

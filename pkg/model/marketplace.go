package model

import "time"

type ItemStatus string

const (
	ItemPending  ItemStatus = "pending"
	ItemApproved ItemStatus = "approved"
	ItemRejected ItemStatus = "rejected"
	ItemSold     ItemStatus = "sold"
	ItemExpired  ItemStatus = "expired"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemPending, ItemApproved, ItemRejected, ItemSold, ItemExpired:
		return true
	}
	return false
}

type ItemCategory string

const (
	CategoryEquipment    ItemCategory = "equipment"
	CategoryUniforms     ItemCategory = "uniforms"
	CategoryFootwear     ItemCategory = "footwear"
	CategoryTrainingGear ItemCategory = "training_gear"
	CategoryGoalkeeping  ItemCategory = "goalkeeping"
	CategoryAccessories  ItemCategory = "accessories"
	CategoryOther        ItemCategory = "other"
)

type ItemCondition string

const (
	ConditionNew     ItemCondition = "new"
	ConditionLikeNew ItemCondition = "like_new"
	ConditionGood    ItemCondition = "good"
	ConditionFair    ItemCondition = "fair"
	ConditionPoor    ItemCondition = "poor"
)

type FlagReason string

const (
	FlagSpam           FlagReason = "spam"
	FlagInappropriate  FlagReason = "inappropriate"
	FlagProhibitedItem FlagReason = "prohibited_item"
	FlagScam           FlagReason = "scam"
	FlagMisleading     FlagReason = "misleading"
	FlagDuplicate      FlagReason = "duplicate"
	FlagOther          FlagReason = "other"
)

type FlagAction string

const (
	FlagActionDismiss FlagAction = "dismiss"
	FlagActionAction  FlagAction = "action"
)

type Flag struct {
	ID               string     `json:"id" bson:"id"`
	Reason           FlagReason `json:"reason" bson:"reason" validate:"required,oneof=spam inappropriate prohibited_item scam misleading duplicate other"`
	Description      string     `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	ReporterRef      string     `json:"reporter_ref,omitempty" bson:"reporter_ref,omitempty" validate:"omitempty,max=100"`
	FlaggedAt        time.Time  `json:"flagged_at" bson:"flagged_at"`
	Resolved         bool       `json:"resolved" bson:"resolved"`
	ResolutionAction FlagAction `json:"resolution_action,omitempty" bson:"resolution_action,omitempty"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
	ResolvedBy       string     `json:"resolved_by,omitempty" bson:"resolved_by,omitempty"`
}

// FlagReport is what an external reporter submits against an item.
type FlagReport struct {
	Reason      FlagReason `json:"reason" validate:"required,oneof=spam inappropriate prohibited_item scam misleading duplicate other"`
	Description string     `json:"description,omitempty" validate:"omitempty,max=1000"`
	ReporterRef string     `json:"reporter_ref,omitempty" validate:"omitempty,max=100"`
}

type MarketplaceItem struct {
	ID              string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title           string        `json:"title" bson:"title" validate:"required,min=3,max=150"`
	Description     string        `json:"description" bson:"description" validate:"omitempty,max=5000"`
	Price           float64       `json:"price" bson:"price" validate:"min=0"`
	Category        ItemCategory  `json:"category" bson:"category" validate:"required,oneof=equipment uniforms footwear training_gear goalkeeping accessories other"`
	Condition       ItemCondition `json:"condition" bson:"condition" validate:"required,oneof=new like_new good fair poor"`
	SellerRef       string        `json:"seller_ref" bson:"seller_ref" validate:"required,max=100"`
	Images          []string      `json:"images" bson:"images" validate:"max=10,dive,url"`
	Status          ItemStatus    `json:"status" bson:"status" validate:"required,oneof=pending approved rejected sold expired"`
	RejectionReason string        `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`
	Flags           []Flag        `json:"flags" bson:"flags" validate:"dive"`
	Views           int64         `json:"views" bson:"views" validate:"min=0"`
	Favorites       int64         `json:"favorites" bson:"favorites" validate:"min=0"`
	ModeratedBy     string        `json:"moderated_by,omitempty" bson:"moderated_by,omitempty"`
	ModeratedAt     *time.Time    `json:"moderated_at,omitempty" bson:"moderated_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

func (i *MarketplaceItem) FindFlag(flagID string) (*Flag, bool) {
	for idx := range i.Flags {
		if i.Flags[idx].ID == flagID {
			return &i.Flags[idx], true
		}
	}
	return nil, false
}

func (i *MarketplaceItem) UnresolvedFlags() int {
	n := 0
	for _, f := range i.Flags {
		if !f.Resolved {
			n++
		}
	}
	return n
}

// TransitionTrigger identifies who may drive a status change.
type TransitionTrigger string

const (
	TriggerModeration      TransitionTrigger = "moderation"
	TriggerFlagEnforcement TransitionTrigger = "flag_enforcement"
	TriggerSystem          TransitionTrigger = "system"
	TriggerRestore         TransitionTrigger = "restore"
)

type transition struct {
	from ItemStatus
	to   ItemStatus
}

var itemTransitions = map[transition][]TransitionTrigger{
	{ItemPending, ItemApproved}:  {TriggerModeration},
	{ItemPending, ItemRejected}:  {TriggerModeration, TriggerFlagEnforcement},
	{ItemApproved, ItemRejected}: {TriggerFlagEnforcement},
	{ItemApproved, ItemSold}:     {TriggerSystem},
	{ItemApproved, ItemExpired}:  {TriggerSystem},
	{ItemRejected, ItemPending}:  {TriggerRestore},
	{ItemExpired, ItemPending}:   {TriggerRestore},
}

// CanTransition reports whether trigger may move an item from one status to another.
func CanTransition(from, to ItemStatus, trigger TransitionTrigger) bool {
	for _, t := range itemTransitions[transition{from, to}] {
		if t == trigger {
			return true
		}
	}
	return false
}

type ModerationView string

const (
	ViewPending    ModerationView = "pending"
	ViewAll        ModerationView = "all"
	ViewFlagged    ModerationView = "flagged"
	ViewRestorable ModerationView = "restorable"
)

func (v ModerationView) Valid() bool {
	switch v {
	case ViewPending, ViewAll, ViewFlagged, ViewRestorable:
		return true
	}
	return false
}

type ItemFilter struct {
	View      ModerationView
	Search    string
	Category  ItemCategory
	Condition ItemCondition
	Status    ItemStatus
	SellerRef string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string
	SortDesc  bool
	Limit     int
	Offset    int64
}

type StatusChange struct {
	Status ItemStatus `json:"status" validate:"required,oneof=approved rejected"`
	Reason string     `json:"reason,omitempty" validate:"required_if=Status rejected,max=500"`
}

type FlagResolution struct {
	FlagID     string     `json:"flag_id" validate:"required"`
	Action     FlagAction `json:"action" validate:"required,oneof=dismiss action"`
	RejectItem bool       `json:"reject_item,omitempty"`
	Reason     string     `json:"reason,omitempty" validate:"max=500"`
}

type BulkStatusChange struct {
	ItemIDs []string   `json:"item_ids" validate:"required,min=1,max=500"`
	Status  ItemStatus `json:"status" validate:"required,oneof=approved rejected"`
	Reason  string     `json:"reason,omitempty" validate:"required_if=Status rejected,max=500"`
}

type BulkDelete struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1,max=500"`
}

type BulkDeleteResult struct {
	DeletedCount int64    `json:"deleted_count"`
	InvalidIDs   []string `json:"invalid_ids,omitempty"`
}

type BulkFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

type MarketplaceStatistics struct {
	Total           int64                `json:"total"`
	ByStatus        map[ItemStatus]int64 `json:"by_status"`
	FlaggedItems    int64                `json:"flagged_items"`
	UnresolvedFlags int64                `json:"unresolved_flags"`
	TotalViews      int64                `json:"total_views"`
	TotalFavorites  int64                `json:"total_favorites"`
}

type Pagination struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int64 `json:"offset"`
}

// ItemPage is one page of a moderation view.
type ItemPage struct {
	Items      []*MarketplaceItem `json:"items"`
	Pagination Pagination         `json:"pagination"`
}

package notify

// Event types pushed to connected UI sessions.
const (
	EventCollectionChanged = "collection_changed"
	EventSaveFailed        = "save_failed"
)

// Event 推送给UI的事件
type Event struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

package consts

const (
	PartitionKeyPair    = "pair"
	PartitionKeyEventID = "event_id"
)

const (
	HeaderEventID = "event_id"
	HeaderPostID  = "post_id"
	HeaderUserID  = "user_id"
)

package app

// NoticeLevel is how a notification is styled.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient user-visible notification. Key is a message catalog
// key; the rendering layer translates it.
type Notice struct {
	Level NoticeLevel
	Key   string
}

const (
	KeyToursLoadFailed  = "tours.load_failed"
	KeyTourLoadFailed   = "tour.load_failed"
	KeyTourNotFound     = "tour.not_found"
	KeyReviewInvalid    = "review.invalid"
	KeyReviewFailed     = "review.failed"
	KeyReviewSubmitted  = "review.submitted"
	KeyReviewThrottled  = "review.throttled"
	KeyTourInvalid      = "admin.tour_invalid"
	KeyTourCreated      = "admin.tour_created"
	KeyTourCreateFailed = "admin.tour_failed"
)

func errorNotice(key string) *Notice   { return &Notice{Level: NoticeError, Key: key} }
func successNotice(key string) *Notice { return &Notice{Level: NoticeSuccess, Key: key} }

package jobs

type JobType string

const (
	JobShareNotification JobType = "share.notify"
)

// check to see if the job type is a known constant

func (t JobType) IsValid() bool {
	switch t {
	case JobShareNotification:
		return true
	default:
		return false
	}
}

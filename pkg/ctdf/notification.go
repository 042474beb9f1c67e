package ctdf

type Notification struct {
	Type NotificationType

	Title   string
	Message string
}

type NotificationType string

const (
	NotificationTypeUpstreamError NotificationType = "UpstreamError"
	NotificationTypeTest          NotificationType = "Test"
)

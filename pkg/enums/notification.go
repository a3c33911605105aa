package enums

// NotificationType classifies in-app notifications produced by the
// negotiation pipeline.
type NotificationType string

const (
	NotificationRFQInvitation NotificationType = "rfq_invitation"
	NotificationOfferReceived NotificationType = "offer_received"
	NotificationOfferAccepted NotificationType = "offer_accepted"
	NotificationOfferDeclined NotificationType = "offer_declined"
	NotificationOrderUpdate   NotificationType = "order_update"
)

var validNotificationTypes = []NotificationType{
	NotificationRFQInvitation,
	NotificationOfferReceived,
	NotificationOfferAccepted,
	NotificationOfferDeclined,
	NotificationOrderUpdate,
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

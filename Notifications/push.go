package Notifications

import (
	"context"
	"fmt"
	"log"
	"os"

	"EVShare/Models"
	"EVShare/email"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Global Firebase client
var firebaseClient *messaging.Client
var ctx = context.Background()

// InitFirebase sets up the FCM client. Call once at startup; push delivery is
// silently skipped when FIREBASE_CREDENTIALS is not configured.
func InitFirebase() error {
	credFile := os.Getenv("FIREBASE_CREDENTIALS")
	if credFile == "" {
		log.Println("FIREBASE_CREDENTIALS not set - push notifications disabled")
		return nil
	}

	opt := option.WithCredentialsFile(credFile)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return fmt.Errorf("error initializing Firebase app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("error getting Messaging client: %v", err)
	}

	firebaseClient = client
	log.Println("Firebase initialized successfully")
	return nil
}

// NotifyUsers stores a notification row per user and pushes it to each of
// their registered devices. Delivery failures are logged, never returned: a
// dead token must not fail the business operation that triggered it.
func NotifyUsers(userIDs []uint, kind Models.NotificationKind, title, body, reference string) {
	for _, userID := range userIDs {
		notification := Models.Notification{
			UserID:    userID,
			Kind:      kind,
			Title:     title,
			Body:      body,
			Reference: reference,
		}
		if err := Models.DB.Create(&notification).Error; err != nil {
			log.Printf("Failed to store notification for user %d: %v", userID, err)
			continue
		}
		pushToUser(userID, kind, title, body, reference)
	}

	// Mirror the notification over email when SMTP is configured.
	email.NotifyUsersByEmail(userIDs, title, body)
}

func pushToUser(userID uint, kind Models.NotificationKind, title, body, reference string) {
	if firebaseClient == nil {
		return
	}

	var tokens []Models.FCMToken
	if err := Models.DB.Where("user_id = ?", userID).Find(&tokens).Error; err != nil {
		log.Printf("Failed to load FCM tokens for user %d: %v", userID, err)
		return
	}

	for _, token := range tokens {
		message := &messaging.Message{
			Token: token.Value,
			Data: map[string]string{
				"kind":      string(kind),
				"reference": reference,
			},
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Android: &messaging.AndroidConfig{
				Notification: &messaging.AndroidNotification{
					Sound: "default",
				},
				Priority: "high",
			},
		}

		if _, err := firebaseClient.Send(ctx, message); err != nil {
			log.Printf("Error sending push to user %d: %v", userID, err)
		}
	}
}

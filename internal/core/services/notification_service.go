package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"townhall-docflow/internal/adapters/persistence/models"
	"townhall-docflow/internal/adapters/persistence/repositories"
	"townhall-docflow/internal/core/domain"
)

// notifyEvent is the unit of work queued for the dispatch goroutine.
// Recipient resolution happens in the worker so a slow or failing lookup
// never touches the request path.
type notifyEvent struct {
	recipients   []uint // explicit user IDs
	departmentID *uint  // fan out to every active user of this department
	excludeUser  uint   // the actor never notifies themselves
	documentID   string
	notifType    string
	title        string
	message      string
}

// NotificationService records in-app notifications and forwards them to an
// optional webhook. All delivery happens on a background goroutine; enqueue
// never blocks and delivery failures are logged, never returned to callers.
type NotificationService struct {
	notifRepo  repositories.NotificationRepository
	userRepo   repositories.UserRepository
	webhookURL string
	client     *http.Client

	queue    chan notifyEvent
	stopChan chan struct{}
	done     chan struct{}
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	notifRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	webhookURL string,
	queueSize int,
) *NotificationService {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &NotificationService{
		notifRepo:  notifRepo,
		userRepo:   userRepo,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		queue:      make(chan notifyEvent, queueSize),
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the dispatch goroutine
func (s *NotificationService) Start() {
	log.Println("🚀 NotificationService started")
	go s.run()
}

// Stop drains the queue and stops the dispatch goroutine
func (s *NotificationService) Stop() {
	close(s.stopChan)
	<-s.done
	log.Println("🛑 NotificationService stopped")
}

func (s *NotificationService) run() {
	defer close(s.done)
	for {
		select {
		case event := <-s.queue:
			s.deliver(event)
		case <-s.stopChan:
			// Drain whatever is already queued before exiting
			for {
				select {
				case event := <-s.queue:
					s.deliver(event)
				default:
					return
				}
			}
		}
	}
}

// enqueue hands an event to the worker without blocking. A full queue drops
// the event; routing already succeeded and notifications are best-effort.
func (s *NotificationService) enqueue(event notifyEvent) {
	select {
	case s.queue <- event:
	default:
		log.Printf("⚠️ Notification queue full, dropping %s event for document %s", event.notifType, event.documentID)
	}
}

func (s *NotificationService) deliver(event notifyEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	recipients := make(map[uint]bool)
	for _, id := range event.recipients {
		recipients[id] = true
	}
	if event.departmentID != nil {
		users, err := s.userRepo.ListActiveByDepartment(ctx, *event.departmentID)
		if err != nil {
			log.Printf("❌ Notification recipient lookup failed for document %s: %v", event.documentID, err)
		} else {
			for _, user := range users {
				recipients[user.ID] = true
			}
		}
	}
	delete(recipients, event.excludeUser)
	delete(recipients, 0)

	for userID := range recipients {
		notif := &models.Notification{
			ID:         uuid.New().String(),
			UserID:     userID,
			DocumentID: event.documentID,
			Type:       event.notifType,
			Title:      event.title,
			Message:    event.message,
		}
		if err := s.notifRepo.Create(ctx, notif); err != nil {
			log.Printf("❌ Failed to store notification for user %d: %v", userID, err)
			continue
		}
		if err := s.postWebhook(ctx, notif); err != nil {
			log.Printf("⚠️ Webhook delivery failed for notification %s: %v", notif.ID, err)
		}
	}
}

// postWebhook mirrors the notification to an external channel when configured
func (s *NotificationService) postWebhook(ctx context.Context, notif *models.Notification) error {
	if s.webhookURL == "" {
		return nil
	}

	payload, err := json.Marshal(notif)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// NotifyForwarded tells the receiving side a document landed on their desk.
// The assignee gets it directly; otherwise every active user of the receiving
// department does. The creator is told their document moved on.
func (s *NotificationService) NotifyForwarded(doc *models.Document, actor domain.Principal, toDepartmentID uint) {
	event := notifyEvent{
		excludeUser: actor.UserID,
		documentID:  doc.ID,
		notifType:   string(domain.NotifDocumentReceived),
		title:       "Document forwarded to your department",
		message:     fmt.Sprintf("%s forwarded %s \"%s\" to your department", actor.FullName, doc.DocumentNumber, doc.Title),
	}
	if doc.AssignedToUserID != nil {
		event.recipients = []uint{*doc.AssignedToUserID}
	} else {
		event.departmentID = &toDepartmentID
	}
	s.enqueue(event)

	if doc.CreatorID != actor.UserID {
		s.enqueue(notifyEvent{
			recipients:  []uint{doc.CreatorID},
			excludeUser: actor.UserID,
			documentID:  doc.ID,
			notifType:   string(domain.NotifDocumentForwarded),
			title:       "Your document was forwarded",
			message:     fmt.Sprintf("%s forwarded your document %s", actor.FullName, doc.DocumentNumber),
		})
	}
}

// NotifyResponded tells the creator a response was recorded on their document
func (s *NotificationService) NotifyResponded(doc *models.Document, actor domain.Principal) {
	s.enqueue(notifyEvent{
		recipients:  []uint{doc.CreatorID},
		excludeUser: actor.UserID,
		documentID:  doc.ID,
		notifType:   string(domain.NotifResponseReceived),
		title:       "Response received",
		message:     fmt.Sprintf("%s responded to %s \"%s\"", actor.FullName, doc.DocumentNumber, doc.Title),
	})
}

// NotifyStatusChanged tells the creator and the assignee about a status move
func (s *NotificationService) NotifyStatusChanged(doc *models.Document, actor domain.Principal, oldStatus, newStatus string) {
	recipients := []uint{doc.CreatorID}
	if doc.AssignedToUserID != nil {
		recipients = append(recipients, *doc.AssignedToUserID)
	}
	s.enqueue(notifyEvent{
		recipients:  recipients,
		excludeUser: actor.UserID,
		documentID:  doc.ID,
		notifType:   string(domain.NotifStatusChanged),
		title:       "Document status changed",
		message:     fmt.Sprintf("%s moved %s from %s to %s", actor.FullName, doc.DocumentNumber, oldStatus, newStatus),
	})
}

// NotifyAssigned tells a user a document was assigned to them
func (s *NotificationService) NotifyAssigned(doc *models.Document, actor domain.Principal, assigneeID uint) {
	s.enqueue(notifyEvent{
		recipients:  []uint{assigneeID},
		excludeUser: actor.UserID,
		documentID:  doc.ID,
		notifType:   string(domain.NotifDocumentReceived),
		title:       "Document assigned to you",
		message:     fmt.Sprintf("%s assigned %s \"%s\" to you", actor.FullName, doc.DocumentNumber, doc.Title),
	})
}

// NotifyDeadlineApproaching reminds the creator and the assignee
func (s *NotificationService) NotifyDeadlineApproaching(doc *models.Document) {
	recipients := []uint{doc.CreatorID}
	if doc.AssignedToUserID != nil {
		recipients = append(recipients, *doc.AssignedToUserID)
	}
	deadline := ""
	if doc.Deadline != nil {
		deadline = doc.Deadline.Format("2006-01-02")
	}
	s.enqueue(notifyEvent{
		recipients: recipients,
		documentID: doc.ID,
		notifType:  string(domain.NotifDeadlineApproaching),
		title:      "Document deadline approaching",
		message:    fmt.Sprintf("%s \"%s\" is due on %s", doc.DocumentNumber, doc.Title, deadline),
	})
}

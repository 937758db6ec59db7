package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"townhall-docflow/internal/adapters/persistence/models"
	"townhall-docflow/internal/core/domain"
)

func newNotifFixture() (*NotificationService, *fakeNotifRepo, *fakeUserRepo) {
	notifRepo := &fakeNotifRepo{}
	users := newFakeUserRepo(
		testUser(1, "finance.clerk@townhall.gov", "Finance Clerk", domain.RoleEmployee, 1, true),
		testUser(2, "urban.head@townhall.gov", "Urban Head", domain.RoleDepartmentHead, 2, true),
		testUser(3, "urban.clerk@townhall.gov", "Urban Clerk", domain.RoleEmployee, 2, true),
		testUser(4, "former.clerk@townhall.gov", "Former Clerk", domain.RoleEmployee, 2, false),
	)
	return NewNotificationService(notifRepo, users, "", 16), notifRepo, users
}

func sampleDoc(creatorID uint, assignee *uint) *models.Document {
	return &models.Document{
		ID:                        "doc-1",
		DocumentNumber:            "2026-FIN-00001",
		Title:                     "Road repair budget",
		CreatorID:                 creatorID,
		CreatorDepartmentID:       1,
		CurrentHolderDepartmentID: 2,
		AssignedToUserID:          assignee,
	}
}

func TestNotifyForwardedFansOutToDepartment(t *testing.T) {
	svc, notifRepo, _ := newNotifFixture()
	svc.Start()

	actor := financeClerk()
	svc.NotifyForwarded(sampleDoc(1, nil), actor, 2)
	svc.Stop()

	// Every active urban planning user was told; the inactive one was not,
	// and the actor got nothing.
	head := notifRepo.byUser(2)
	require.Len(t, head, 1)
	assert.Equal(t, string(domain.NotifDocumentReceived), head[0].Type)
	assert.Equal(t, "doc-1", head[0].DocumentID)

	assert.Len(t, notifRepo.byUser(3), 1)
	assert.Empty(t, notifRepo.byUser(4), "inactive users receive nothing")
	assert.Empty(t, notifRepo.byUser(1), "the actor who is also the creator is never notified")
}

func TestNotifyForwardedTargetsAssigneeDirectly(t *testing.T) {
	svc, notifRepo, _ := newNotifFixture()
	svc.Start()

	assignee := uint(3)
	actor := financeClerk()
	svc.NotifyForwarded(sampleDoc(1, &assignee), actor, 2)
	svc.Stop()

	assert.Len(t, notifRepo.byUser(3), 1, "assignee is notified directly")
	assert.Empty(t, notifRepo.byUser(2), "no department fan-out when an assignee is set")
}

func TestNotifyForwardedTellsCreatorWhenSomeoneElseForwards(t *testing.T) {
	svc, notifRepo, _ := newNotifFixture()
	svc.Start()

	actor := urbanHead()
	svc.NotifyForwarded(sampleDoc(1, nil), actor, 2)
	svc.Stop()

	creator := notifRepo.byUser(1)
	require.Len(t, creator, 1)
	assert.Equal(t, string(domain.NotifDocumentForwarded), creator[0].Type)
}

func TestNotifyStatusChangedReachesCreatorAndAssignee(t *testing.T) {
	svc, notifRepo, _ := newNotifFixture()
	svc.Start()

	assignee := uint(3)
	actor := urbanHead()
	svc.NotifyStatusChanged(sampleDoc(1, &assignee), actor, "pending", "in_progress")
	svc.Stop()

	assert.Len(t, notifRepo.byUser(1), 1)
	assert.Len(t, notifRepo.byUser(3), 1)
	assert.Empty(t, notifRepo.byUser(2), "the actor is excluded")
}

func TestStorageFailureNeverReachesCaller(t *testing.T) {
	notifRepo := &fakeNotifRepo{failCreate: true}
	users := newFakeUserRepo(testUser(1, "a@townhall.gov", "A", domain.RoleEmployee, 1, true))
	svc := NewNotificationService(notifRepo, users, "", 16)
	svc.Start()

	// The enqueue path returns nothing and must not panic when the store
	// is down; Stop drains the queue through the failing repo.
	svc.NotifyResponded(sampleDoc(1, nil), urbanHead())
	svc.Stop()

	assert.Empty(t, notifRepo.notifications)
}

func TestStopDrainsQueuedEvents(t *testing.T) {
	svc, notifRepo, _ := newNotifFixture()
	svc.Start()

	actor := urbanHead()
	for i := 0; i < 10; i++ {
		svc.NotifyResponded(sampleDoc(1, nil), actor)
	}
	svc.Stop()

	assert.Len(t, notifRepo.byUser(1), 10, "Stop must deliver everything already queued")
}

func TestFullQueueDropsInsteadOfBlocking(t *testing.T) {
	notifRepo := &fakeNotifRepo{}
	users := newFakeUserRepo(testUser(1, "a@townhall.gov", "A", domain.RoleEmployee, 1, true))
	svc := NewNotificationService(notifRepo, users, "", 1)

	// Worker not started: the queue fills up and further enqueues must
	// return immediately instead of blocking the caller.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			svc.NotifyResponded(sampleDoc(1, nil), urbanHead())
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}
}

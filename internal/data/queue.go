package data

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/aurelia-server/aurelia"
)

// UpdateKind identifies which slice of a character record an UpdateTask writes.
type UpdateKind int

const (
	UpdateCharacterMove UpdateKind = iota
	UpdateGold
	UpdatePools
)

// UpdateTask is one fire-and-forget durable write. Only the fields relevant
// to the Kind are read.
type UpdateTask struct {
	Kind        UpdateKind
	CharacterID uint

	X     float32
	Y     float32
	Z     float32
	Angle uint16

	Gold uint32

	HealthPoints  int
	ManaPoints    int
	StaminaPoints int
}

// UpdateQueue applies character mutations to the database from a single
// background worker. Callers enqueue and move on; nothing in the live
// session path waits on the database.
type UpdateQueue struct {
	db    *gorm.DB
	tasks chan UpdateTask
	wg    sync.WaitGroup
}

func NewUpdateQueue(db *gorm.DB) *UpdateQueue {
	return &UpdateQueue{
		db:    db,
		tasks: make(chan UpdateTask, 512),
	}
}

// Start launches the worker goroutine. The worker drains any tasks still
// queued when ctx is cancelled before exiting.
func (q *UpdateQueue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case task := <-q.tasks:
				q.apply(task)
			case <-ctx.Done():
				for {
					select {
					case task := <-q.tasks:
						q.apply(task)
					default:
						return
					}
				}
			}
		}
	}()
}

// Wait blocks until the worker has exited. Call after cancelling the context
// passed to Start.
func (q *UpdateQueue) Wait() {
	q.wg.Wait()
}

// Enqueue submits a task for eventual durable storage. If the queue is
// saturated the task is dropped with a warning rather than stalling the
// caller's connection handler.
func (q *UpdateQueue) Enqueue(task UpdateTask) {
	select {
	case q.tasks <- task:
	default:
		aurelia.Log.Warnf("update queue full; dropping update kind=%d for character %d",
			task.Kind, task.CharacterID)
	}
}

func (q *UpdateQueue) apply(task UpdateTask) {
	var err error

	switch task.Kind {
	case UpdateCharacterMove:
		err = q.db.Model(&Character{}).Where("id = ?", task.CharacterID).
			Updates(map[string]interface{}{
				"pos_x": task.X,
				"pos_y": task.Y,
				"pos_z": task.Z,
				"angle": task.Angle,
			}).Error
	case UpdateGold:
		err = q.db.Model(&Character{}).Where("id = ?", task.CharacterID).
			Update("gold", task.Gold).Error
	case UpdatePools:
		err = q.db.Model(&Character{}).Where("id = ?", task.CharacterID).
			Updates(map[string]interface{}{
				"health_points":  task.HealthPoints,
				"mana_points":    task.ManaPoints,
				"stamina_points": task.StaminaPoints,
			}).Error
	default:
		aurelia.Log.Warnf("unknown update kind %d for character %d", task.Kind, task.CharacterID)
		return
	}

	if err != nil {
		aurelia.Log.Errorf("failed to apply update kind=%d for character %d: %s",
			task.Kind, task.CharacterID, err)
	}
}

package world

import (
	"testing"

	"github.com/aurelia-server/aurelia/internal/data"
	"github.com/aurelia-server/aurelia/internal/packets"
)

func TestSetCurrentHPClampsToRange(t *testing.T) {
	tests := []struct {
		name  string
		value int
		want  int
	}{
		{"within range", 40, 40},
		{"above max", baseHP + 500, baseHP},
		{"below zero", -10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player, sender := newTestPlayer(1, "Elwen")
			player.SetCurrentHP(tt.value, 0)

			if got := player.CurrentHP(); got != tt.want {
				t.Errorf("expected HP %d, got %d", tt.want, got)
			}

			update, ok := sender.sent()[0].(*packets.PoolUpdate)
			if !ok {
				t.Fatalf("expected a PoolUpdate, got %T", sender.sent()[0])
			}
			if update.Pool != packets.PoolHP || update.Current != int32(tt.want) {
				t.Errorf("unexpected pool update: pool=%d current=%d", update.Pool, update.Current)
			}
		})
	}
}

func TestUnchangedPoolSendsNothing(t *testing.T) {
	player, sender := newTestPlayer(1, "Elwen")

	player.SetCurrentMP(baseMP)

	if got := len(sender.sent()); got != 0 {
		t.Errorf("expected no packets for a transition that changed nothing, got %d", got)
	}
}

func TestDecreaseHPToZeroKills(t *testing.T) {
	player, sender := newTestPlayer(1, "Elwen")

	player.DecreaseHP(baseHP+50, 42)

	if !player.IsDead() {
		t.Error("expected the player to be dead")
	}
	if player.CurrentHP() != 0 {
		t.Errorf("expected HP 0, got %d", player.CurrentHP())
	}
	if player.KillerID() != 42 {
		t.Errorf("expected killer 42, got %d", player.KillerID())
	}

	var dead *packets.CharacterDead
	for _, pkt := range sender.sent() {
		if d, ok := pkt.(*packets.CharacterDead); ok {
			dead = d
		}
	}
	if dead == nil {
		t.Fatal("expected a CharacterDead notification")
	}
	if dead.KillerID != 42 {
		t.Errorf("expected death notification to carry killer 42, got %d", dead.KillerID)
	}

	// Dying again is not a transition.
	sender.clear()
	player.DecreaseHP(10, 7)
	for _, pkt := range sender.sent() {
		if _, ok := pkt.(*packets.CharacterDead); ok {
			t.Error("expected no second death notification")
		}
	}
}

func TestSetExtraHPReclampsCurrent(t *testing.T) {
	player, sender := newTestPlayer(1, "Elwen")

	player.SetExtraHP(50)
	if got := player.MaxHP(); got != baseHP+50 {
		t.Fatalf("expected max HP %d, got %d", baseHP+50, got)
	}

	player.SetCurrentHP(baseHP+50, 0)
	sender.clear()

	// Losing the bonus pulls the current value back under the new maximum.
	player.SetExtraHP(0)

	if got := player.CurrentHP(); got != baseHP {
		t.Errorf("expected HP re-clamped to %d, got %d", baseHP, got)
	}

	sawMax, sawPool := false, false
	for _, pkt := range sender.sent() {
		switch update := pkt.(type) {
		case *packets.MaxPoolUpdate:
			sawMax = update.Max == baseHP
		case *packets.PoolUpdate:
			sawPool = update.Current == baseHP
		}
	}
	if !sawMax || !sawPool {
		t.Errorf("expected both a max update and a re-clamp update, got max=%v pool=%v", sawMax, sawPool)
	}
}

func TestPoolChangeQueuesDurableWrite(t *testing.T) {
	player, _ := newTestPlayer(1, "Elwen")
	queue := player.queue.(*fakeQueue)

	player.SetCurrentSP(10)

	tasks := queue.queued()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 queued task, got %d", len(tasks))
	}
	if tasks[0].Kind != data.UpdatePools || tasks[0].StaminaPoints != 10 {
		t.Errorf("unexpected task: kind=%d sp=%d", tasks[0].Kind, tasks[0].StaminaPoints)
	}
}

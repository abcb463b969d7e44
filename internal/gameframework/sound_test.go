package gameframework

import "testing"

func TestScheduleSoundPlaysOnceTargetTickReached(t *testing.T) {
	g := newFakeGame(2, 4)
	player := NewPlayer("a", "Alice", false)
	g.Players = append(g.Players, player)
	user := newFakeUser()
	g.AttachUser(player.ID, user)

	g.ScheduleSound("ding", 2, 1, 0, 1)

	g.drainDueSounds() // tick 1: not due yet
	if len(user.sounds) != 0 {
		t.Fatalf("sound played early: %v", user.sounds)
	}
	g.drainDueSounds() // tick 2: due
	if len(user.sounds) != 1 || user.sounds[0] != "ding" {
		t.Fatalf("sounds = %v, want [ding]", user.sounds)
	}
	g.drainDueSounds() // tick 3: must not replay
	if len(user.sounds) != 1 {
		t.Fatalf("sound replayed: %v", user.sounds)
	}
}

func TestTickRunsSchedulerBotsAndOnTick(t *testing.T) {
	g := newFakeGame(2, 4)
	g.Tick()
	g.Tick()
	if g.SoundSchedulerTick != 2 {
		t.Fatalf("SoundSchedulerTick = %d, want 2", g.SoundSchedulerTick)
	}
	if g.onTickCalls != 2 {
		t.Fatalf("onTickCalls = %d, want 2", g.onTickCalls)
	}
}

func TestDrainDueSoundsKeepsSoundsNotYetDue(t *testing.T) {
	g := newFakeGame(2, 4)
	g.ScheduleSound("boom", 5, 1, 0, 1)
	g.drainDueSounds()
	if len(g.ScheduledSounds) != 1 {
		t.Fatalf("len(ScheduledSounds) = %d, want 1 (not yet due)", len(g.ScheduledSounds))
	}
}

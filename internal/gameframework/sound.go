package gameframework

// ScheduleSound defers a sound to play delayTicks from now, broadcast to
// every attached human player. Bookkeeping only; delivery happens from
// Tick when the target tick is reached.
func (g *BaseGame) ScheduleSound(name string, delayTicks int, volume, pan, pitch float64) {
	g.ScheduledSounds = append(g.ScheduledSounds, ScheduledSound{
		TargetTick: g.SoundSchedulerTick + delayTicks,
		Name:       name,
		Volume:     volume,
		Pan:        pan,
		Pitch:      pitch,
	})
}

// drainDueSounds advances the sound scheduler's tick counter by one and
// plays every sound whose target has been reached, in schedule order. Each
// call counts as one tick, so Tick calls it exactly once per tick.
func (g *BaseGame) drainDueSounds() {
	g.SoundSchedulerTick++

	var remaining []ScheduledSound
	for _, s := range g.ScheduledSounds {
		if s.TargetTick <= g.SoundSchedulerTick {
			for _, p := range g.Players {
				if user := g.GetUser(p); user != nil {
					user.PlaySound(s.Name)
				}
			}
		} else {
			remaining = append(remaining, s)
		}
	}
	g.ScheduledSounds = remaining
}

// Tick runs the framework's per-tick work (sound scheduler, bot cadence,
// pending estimation poll) and then the concrete game's own OnTick hook.
// The table manager calls this once per scheduler tick for every active
// game.
func (g *BaseGame) Tick() {
	g.drainDueSounds()
	g.driveBots()
	g.pollEstimation()
	if g.impl != nil {
		g.impl.OnTick()
	}
}

package gameframework

// Broadcast speaks verbatim text to every attached human player (bots have
// no UserView and are silently skipped).
func (g *BaseGame) Broadcast(text string) {
	for _, p := range g.Players {
		if user := g.GetUser(p); user != nil {
			user.Speak(text)
		}
	}
}

// BroadcastL speaks a localized message, rendered once per attached user in
// that user's own locale.
func (g *BaseGame) BroadcastL(key string, args map[string]any) {
	for _, p := range g.Players {
		if user := g.GetUser(p); user != nil {
			user.SpeakL(key, args)
		}
	}
}

// BroadcastExceptL is BroadcastL but skips one player (typically the actor,
// who already received a first-person variant of the same event).
func (g *BaseGame) BroadcastExceptL(exclude *Player, key string, args map[string]any) {
	for _, p := range g.Players {
		if exclude != nil && p.ID == exclude.ID {
			continue
		}
		if user := g.GetUser(p); user != nil {
			user.SpeakL(key, args)
		}
	}
}

// BroadcastPersonalL speaks a different localized message to the named actor
// than to everyone else, e.g. "You rolled a 5" vs "Alice rolled a 5".
func (g *BaseGame) BroadcastPersonalL(actor *Player, selfKey, othersKey string, args map[string]any) {
	if user := g.GetUser(actor); user != nil {
		user.SpeakL(selfKey, args)
	}
	g.BroadcastExceptL(actor, othersKey, args)
}

// PlayMusic sets and broadcasts new looping background music; passing ""
// leaves the current track alone (use StopMusic-equivalent by setting
// CurrentMusic to "" directly if silence is desired).
func (g *BaseGame) PlayMusic(name string) {
	if name == "" {
		return
	}
	g.CurrentMusic = name
	for _, p := range g.Players {
		if user := g.GetUser(p); user != nil {
			user.PlayMusic(name)
		}
	}
}

// PlayAmbience sets and broadcasts a new looping ambience track.
func (g *BaseGame) PlayAmbience(name string) {
	g.CurrentAmbience = name
	for _, p := range g.Players {
		if user := g.GetUser(p); user != nil {
			user.PlayAmbience(name)
		}
	}
}

// StopAmbience clears and stops the current ambience for every attached
// player.
func (g *BaseGame) StopAmbience() {
	g.CurrentAmbience = ""
	for _, p := range g.Players {
		if user := g.GetUser(p); user != nil {
			user.StopAmbience()
		}
	}
}

// PlaySoundTo plays a sound immediately (not deferred) to one player only.
func (g *BaseGame) PlaySoundTo(player *Player, name string) {
	if user := g.GetUser(player); user != nil {
		user.PlaySound(name)
	}
}

package game

import "github.com/hajimehoshi/ebiten/v2"

type action int

const (
	actionQuit action = iota + 1
	actionToggleDebug
	actionOpenSoundtrack
	actionTogglePause
)

var bindings = []struct {
	key ebiten.Key
	act action
}{
	{ebiten.KeyEscape, actionQuit},
	{ebiten.KeyQ, actionQuit},
	{ebiten.KeyF3, actionToggleDebug},
	{ebiten.KeyO, actionOpenSoundtrack},
	{ebiten.KeySpace, actionTogglePause},
}

// keys turns held keys into actions on the frame they go down.
type keys struct {
	pressed func(ebiten.Key) bool
	prev    map[ebiten.Key]bool
}

func newKeys(pressed func(ebiten.Key) bool) *keys {
	return &keys{pressed: pressed, prev: map[ebiten.Key]bool{}}
}

func (k *keys) justPressed(key ebiten.Key) bool {
	down := k.pressed(key)
	jp := down && !k.prev[key]
	k.prev[key] = down
	return jp
}

// poll returns this frame's actions in binding order, each at most once.
func (k *keys) poll() []action {
	var out []action
	seen := map[action]bool{}
	for _, b := range bindings {
		if k.justPressed(b.key) && !seen[b.act] {
			seen[b.act] = true
			out = append(out, b.act)
		}
	}
	return out
}

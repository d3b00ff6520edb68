package state

import "github.com/pixil98/bitcraft-companion/internal/bitcraft"

// Keys name the tracked domains in changes and on the bus.
const (
	KeyWorldMap      = "world-map"
	KeyClaims        = "claims"
	KeyEmpires       = "empires"
	KeyResources     = "resources"
	KeyServerStatus  = "server-status"
	KeyOnlinePlayers = "online-players"
	KeyPlayerSearch  = "player-search"
)

// ChatKey is the key of one chat channel, e.g. "chat.global".
func ChatKey(ch bitcraft.Channel) string {
	return "chat." + ch.String()
}

package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

var playerColors = []string{ColorRed, ColorBlue, ColorGreen, ColorYellow, ColorPurple, ColorCyan}

const (
	emptySymbol   = "·"
	ventSymbol    = "◆"
	playerSymbols = "ABCDEFGH"
)

// RenderBoard draws the offset-hex board. Odd rows are shifted half a cell
// right so neighbors line up visually. Each player is shown by the letter of
// their turn order, upper case on vents; a trailing + marks an active
// defense bonus at now. color adds ANSI colors per player.
func RenderBoard(gs *GameState, now time.Time, color bool) string {
	board := gs.Board()
	symbols := make(map[string]byte, len(gs.Players))
	colors := make(map[string]string, len(gs.Players))
	for _, ps := range gs.Players {
		symbols[ps.PlayerID] = playerSymbols[ps.TurnOrder%len(playerSymbols)]
		colors[ps.PlayerID] = playerColors[ps.TurnOrder%len(playerColors)]
	}

	var sb strings.Builder
	sb.Grow((board.W*16 + 8) * (board.H + 4))

	sb.WriteString("    ")
	for x := 0; x < board.W; x++ {
		fmt.Fprintf(&sb, "%-3d", x)
	}
	sb.WriteString("\n")

	for y := 0; y < board.H; y++ {
		fmt.Fprintf(&sb, "%2d  ", y)
		if y%2 == 1 {
			sb.WriteString(" ")
		}
		for x := 0; x < board.W; x++ {
			sb.WriteString(tileCell(board.GetTile(x, y), symbols, colors, color, now))
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(emptySymbol + " =unclaimed " + ventSymbol + " =vent a-h=players A-H=player on vent +=defended\n")
	for _, ps := range gs.Players {
		marker := ""
		if ps.PlayerID == gs.Game.CurrentTurnPlayerID {
			marker = " <"
		}
		fmt.Fprintf(&sb, "%s %-24s gas=%-3d tiles=%-3d%s\n",
			strings.ToLower(string(symbols[ps.PlayerID])), ps.PlayerID, ps.Gas, ps.TerritoryCount, marker)
	}
	return sb.String()
}

func tileCell(t *core.Tile, symbols map[string]byte, colors map[string]string, color bool, now time.Time) string {
	if t == nil {
		return "  "
	}
	if !t.IsOwned() {
		sym := emptySymbol
		if t.IsVent {
			sym = ventSymbol
		}
		if color {
			return ColorGray + sym + " " + ColorReset
		}
		return sym + " "
	}

	sym, ok := symbols[t.OwnerID]
	if !ok {
		sym = '?'
	}
	if !t.IsVent {
		sym = strings.ToLower(string(sym))[0]
	}
	suffix := " "
	if t.ActiveDefenseBonus(now) > 0 {
		suffix = "+"
	}
	cell := string(sym) + suffix
	if color {
		return colors[t.OwnerID] + cell + ColorReset
	}
	return cell
}

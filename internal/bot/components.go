package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rotisserie/eris"

	"podstats-discord-bot/internal/panel"
)

const panelPrefix = "panel"

// maxRows is the number of action rows Discord renders on one message.
const maxRows = 5

var errBadCustomID = eris.New("malformed panel custom id")

// panelButton identifies a pressed grid button.
type panelButton struct {
	PanelID  string
	Category panel.Category
	Player   int
}

// customID encodes a button as "panel:<panel id>:<category>:<player>".
func customID(panelID string, c panel.Category, player int) string {
	return fmt.Sprintf("%s:%s:%d:%d", panelPrefix, panelID, int(c), player)
}

func parseCustomID(id string) (panelButton, error) {
	parts := strings.Split(id, ":")
	if len(parts) != 4 || parts[0] != panelPrefix || parts[1] == "" {
		return panelButton{}, errBadCustomID
	}
	c, err := strconv.Atoi(parts[2])
	if err != nil || !panel.Category(c).Valid() {
		return panelButton{}, errBadCustomID
	}
	player, err := strconv.Atoi(parts[3])
	if err != nil || player < 0 {
		return panelButton{}, errBadCustomID
	}
	return panelButton{PanelID: parts[1], Category: panel.Category(c), Player: player}, nil
}

func buttonStyle(c panel.Category) discordgo.ButtonStyle {
	switch c {
	case panel.OutFirst:
		return discordgo.DangerButton
	case panel.Winner:
		return discordgo.SuccessButton
	}
	return discordgo.PrimaryButton
}

// panelComponents renders the grid with one action row per player.
func panelComponents(panelID string, grid [][]panel.Button) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, len(grid))
	for _, line := range grid {
		buttons := make([]discordgo.MessageComponent, 0, len(line))
		for _, b := range line {
			buttons = append(buttons, discordgo.Button{
				Label:    b.Label,
				Style:    buttonStyle(b.Category),
				Disabled: b.Disabled,
				CustomID: customID(panelID, b.Category, b.Player),
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

package bot

import "github.com/bwmarrin/discordgo"

const (
	cmdSetup          = "setup"
	cmdLink           = "link"
	cmdAddPlayers     = "addplayers"
	cmdAddCommanders  = "addcommanders"
	cmdAddGame        = "addgame"
	cmdFinishGame     = "finishgame"
	cmdTablePlayer    = "tableplayer"
	cmdTableCommander = "tablecommander"
	cmdHelp           = "help"
)

func slashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Name: cmdSetup, Description: "Set up the bot in this channel and create the stats spreadsheet."},
		{Name: cmdLink, Description: "Get the link to the stats spreadsheet."},
		{Name: cmdAddPlayers, Description: "Add players to the spreadsheet."},
		{Name: cmdAddCommanders, Description: "Add commanders to the spreadsheet."},
		{Name: cmdAddGame, Description: "Start a game."},
		{Name: cmdFinishGame, Description: "Record the results of the current game."},
		{Name: cmdTablePlayer, Description: "Display the table for player stats."},
		{Name: cmdTableCommander, Description: "Display the table for commander stats."},
		{Name: cmdHelp, Description: "List the bot's commands."},
	}
}

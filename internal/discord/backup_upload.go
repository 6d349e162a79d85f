package discord

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/bwmarrin/discordgo"
)

// UploadBackup posts the snapshot file to every guild that configured a
// backup channel. Guilds without one are skipped; one failing upload does not
// stop the rest.
func (s *BotService) UploadBackup(path string) error {
	var uploaded, failed int

	for _, guild := range s.Session.State.Guilds {
		settings, err := s.Storage.GuildSettings(guild.ID)
		if err != nil || settings.BackupChannelID == "" {
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open snapshot %s: %w", path, err)
		}

		lang := s.guildLanguage(guild.ID)
		_, err = s.Session.ChannelMessageSendComplex(settings.BackupChannelID, &discordgo.MessageSend{
			Content: fmt.Sprintf(s.Localizer.GetString(lang, "backup_done"), filepath.Base(path)),
			Files: []*discordgo.File{
				{Name: filepath.Base(path), Reader: f},
			},
		})
		f.Close()
		if err != nil {
			log.Printf("WARNING: Failed to upload snapshot to guild %s: %v", guild.ID, err)
			failed++
			continue
		}
		uploaded++
	}

	if uploaded == 0 && failed > 0 {
		return fmt.Errorf("snapshot upload failed for all %d configured guilds", failed)
	}
	return nil
}

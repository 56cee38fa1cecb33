package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/queueshare/internal/bot"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/application/usecases"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

type options []*discordgo.ApplicationCommandInteractionDataOption

func (o options) get(name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range o {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

func (o options) stringValue(name string) string {
	if opt := o.get(name); opt != nil {
		return opt.StringValue()
	}
	return ""
}

// CommandHandlers holds the /queue command handlers.
type CommandHandlers struct {
	queue *usecases.QueueService
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(queue *usecases.QueueService) *CommandHandlers {
	return &CommandHandlers{queue: queue}
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	opts := i.ApplicationCommandData().Options
	if len(opts) == 0 {
		return respondError(r, "Invalid subcommand")
	}

	callerID, err := interactionUserID(i)
	if err != nil {
		return respondError(r, "Invalid user")
	}

	ctx := context.Background()
	subCmd := opts[0]
	sub := options(subCmd.Options)

	switch subCmd.Name {
	case "create":
		return h.handleCreate(ctx, r, callerID)
	case "friends":
		return h.handleFriends(ctx, r, callerID)
	}

	queueID, err := usecases.ParseQueueID(sub.stringValue("queue"))
	if err != nil {
		return respondError(r, "Invalid queue ID")
	}

	switch subCmd.Name {
	case "show":
		return h.handleShow(ctx, r, queueID, callerID)
	case "add":
		return h.handleAdd(ctx, r, queueID, callerID, sub)
	case "remove":
		return h.handleRemove(ctx, r, queueID, callerID, sub)
	case "move":
		return h.handleMove(ctx, r, queueID, callerID, sub)
	case "next":
		return h.handleNext(ctx, r, queueID, callerID, sub)
	case "skip":
		return h.handleSkip(ctx, r, queueID, callerID)
	case "pause":
		return h.handlePause(ctx, r, queueID, callerID)
	case "play":
		return h.handlePlay(ctx, r, queueID, callerID)
	case "seek":
		return h.handleSeek(ctx, r, queueID, callerID, sub)
	case "join":
		return h.handleJoin(ctx, r, queueID, callerID)
	case "leave":
		return h.handleLeave(ctx, r, queueID, callerID)
	case "kick":
		return h.handleKick(ctx, r, queueID, callerID, sub)
	case "delete":
		return h.handleDelete(ctx, r, queueID, callerID)
	default:
		return respondError(r, "Unknown subcommand")
	}
}

func (h *CommandHandlers) handleCreate(
	ctx context.Context,
	r bot.Responder,
	callerID snowflake.ID,
) error {
	output, err := h.queue.Create(ctx, usecases.CreateInput{CreatorID: callerID})
	if err != nil {
		return respondFailure(r, "create", err)
	}

	description := fmt.Sprintf("Created queue `%s`.", output.Queue.ID())
	if !output.Created {
		description = fmt.Sprintf("You already have queue `%s`.", output.Queue.ID())
	}
	return respondSuccess(r, description)
}

func (h *CommandHandlers) handleShow(
	ctx context.Context,
	r bot.Responder,
	queueID usecases.QueueID,
	callerID snowflake.ID,
) error {
	output, err := h.queue.Get(ctx, usecases.GetInput{QueueID: queueID, CallerID: callerID})
	if err != nil {
		return respondFailure(r, "show", err)
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{queueEmbed(output.Queue)},
		},
	})
}

func (h *CommandHandlers) handleAdd(
	ctx context.Context,
	r bot.Responder,
	queueID usecases.QueueID,
	callerID snowflake.ID,
	opts options,
) error {
	input := usecases.TrackInput{
		ID:   opts.stringValue("id"),
		Name: opts.stringValue("name"),
		URI:  opts.stringValue("uri"),
	}
	if opt := opts.get("duration_ms"); opt != nil {
		input.Duration = time.Duration(opt.IntValue()) * time.Millisecond
	}
	if artists := opts.stringValue("artists"); artists != "" {
		for _, artist := range strings.Split(artists, ",") {
			if artist = strings.TrimSpace(artist); artist != "" {
				input.Artists = append(input.Artists, artist)
			}
		}
	}
	if url := opts.stringValue("artwork_url"); url != "" {
		input.Artwork = &usecases.Artwork{URL: url}
	}

	output, err := h.queue.AddTrack(ctx, usecases.AddTrackInput{
		QueueID:  queueID,
		CallerID: callerID,
		Track:    input,
	})
	if err != nil {
		return respondFailure(r, "add", err)
	}

	added := output.Tracks[len(output.Tracks)-1]
	return respondSuccess(
		r,
		fmt.Sprintf("Added %s at position %d.", trackLink(added), len(output.Tracks)),
	)
}

func (h *CommandHandlers) handleRemove(
	ctx context.Context,
	r bot.Responder,
	queueID usecases.QueueID,
	callerID snowflake.ID,
	opts options,
) error {
	trackID := usecases.TrackID(opts.stringValue("track"))
	_, err := h.queue.RemoveTrack(ctx, usecases.RemoveTrackInput{
		QueueID:  queueID,
		CallerID: callerID,
		TrackID:  trackID,
	})
	if err != nil {
		return respondFailure(r, "remove", err)
	}
	return respondSuccess(r, fmt.Sprintf("Removed `%s`.", trackID))
}

func (h *CommandHandlers) handleMove(
	ctx context.Context,
	r bot.Responder,
	queueID usecases.QueueID,
	callerID snowflake.ID,
	opts options,
) error {
	trackID := usecases.TrackID(opts.stringValue("track"))

	// Convert from 1-indexed (user input) to 0-indexed (internal)
	var index int
	if opt := opts.get("position"); opt != nil {
		index = int(opt.IntValue()) - 1
	}

	_, err := h.queue.MoveTrack(ctx, usecases.MoveTrackInput{
		QueueID:  queueID,
		CallerID: callerID,
		TrackID:  trackID,
		NewIndex: index,
	})
	if err != nil {
		return respondFailure(r, "move", err)
	}
	return respondSuccess(r, fmt.Sprintf("Moved `%s` to position %d.", trackID, index+1))
}

func (h *CommandHandlers) handleNext(
	ctx context.Context,
	r bot.Responder,
	queueID usecases.QueueID,
	callerID snowflake.ID,
	opts options,
) error {
	trackID := usecases.TrackID(opts.stringValue("track"))
	output, err := h.queue.UpNext(ctx, usecases.UpNextInput{
		QueueID:  queueID,
		CallerID: callerID,
		TrackID:  trackID,
	})
	if err != nil {
		return respondFailure(r, "next", err)
	}

	if output.Next == nil {
		return respondSuccess(r, fmt.Sprintf("`%s` is the last track.", trackID))
	}
	return respondSuccess(r, fmt.Sprintf("Up next after `%s`: %s.", trackID, trackLink(*output.Next)))
}

func (h *CommandHandlers) handleSkip(
	ctx context.Context,
	r bot.Responder,
	queueID usecases.QueueID,
	callerID snowflake.ID,
) error {
	output, err := h.queue.Advance(ctx, usecases.PlaybackInput{QueueID: queueID, CallerID: callerID})
	if err != nil {
		return respondFailure(r, "skip", err)
	}

	if output.FinishedTrack == nil {
		return respondSuccess(r, "Queue is empty.")
	}
	description := fmt.Sprintf("Skipped %s.", trackLink(*output.FinishedTrack))
	if current := output.Queue.Current(); current != nil {
		description += fmt.Sprintf(" Now playing %s.", trackLink(*current))
	}
	return respondSuccess(r, description)
}

func (h *CommandHandlers) handlePause(
	ctx context.Context,
	r bot.Responder,
	queueID usecases.QueueID,
	callerID snowflake.ID,
) error {
	_, err := h.queue.Pause(ctx, usecases.PlaybackInput{QueueID: queueID, CallerID: callerID})
	if err != nil {
		return respondFailure(r, "pause", err)
	}
	return respondSuccess(r, "Paused.")
}

func (h *CommandHandlers) handlePlay(
	ctx context.Context,
	r bot.Responder,
	queueID usecases.QueueID,
	callerID snowflake.ID,
) error {
	_, err := h.queue.Play(ctx, usecases.PlaybackInput{QueueID: queueID, CallerID: callerID})
	if err != nil {
		return respondFailure(r, "play", err)
	}
	return respondSuccess(r, "Playing.")
}

func (h *CommandHandlers) handleSeek(
	ctx context.Context,
	r bot.Responder,
	queueID usecases.QueueID,
	callerID snowflake.ID,
	opts options,
) error {
	position, err := parsePosition(opts.stringValue("position"))
	if err != nil {
		return respondError(r, "Invalid position, use seconds or m:ss")
	}

	_, err = h.queue.Seek(ctx, usecases.SeekInput{
		QueueID:    queueID,
		CallerID:   callerID,
		PositionMs: position.Milliseconds(),
	})
	if err != nil {
		return respondFailure(r, "seek", err)
	}
	return respondSuccess(r, fmt.Sprintf("Seeked to %s.", formatPosition(position)))
}

func (h *CommandHandlers) handleJoin(
	ctx context.Context,
	r bot.Responder,
	queueID usecases.QueueID,
	callerID snowflake.ID,
) error {
	output, err := h.queue.Join(ctx, usecases.JoinInput{QueueID: queueID, CallerID: callerID})
	if err != nil {
		return respondFailure(r, "join", err)
	}

	if !output.Joined {
		return respondSuccess(r, "You are already in this queue.")
	}
	return respondSuccess(r, fmt.Sprintf("Joined <@%d>'s queue.", output.Queue.CreatorID()))
}

func (h *CommandHandlers) handleLeave(
	ctx context.Context,
	r bot.Responder,
	queueID usecases.QueueID,
	callerID snowflake.ID,
) error {
	output, err := h.queue.Leave(ctx, usecases.LeaveInput{QueueID: queueID, CallerID: callerID})
	if err != nil {
		return respondFailure(r, "leave", err)
	}

	if !output.Left {
		return respondSuccess(r, "You are not in this queue.")
	}
	return respondSuccess(r, "Left the queue.")
}

func (h *CommandHandlers) handleKick(
	ctx context.Context,
	r bot.Responder,
	queueID usecases.QueueID,
	callerID snowflake.ID,
	opts options,
) error {
	var targetID snowflake.ID
	if opt := opts.get("user"); opt != nil {
		raw, _ := opt.Value.(string)
		id, err := snowflake.Parse(raw)
		if err != nil {
			return respondError(r, "Invalid user")
		}
		targetID = id
	}

	_, err := h.queue.RemoveParticipant(ctx, usecases.RemoveParticipantInput{
		QueueID:  queueID,
		CallerID: callerID,
		TargetID: targetID,
	})
	if err != nil {
		return respondFailure(r, "kick", err)
	}
	return respondSuccess(r, fmt.Sprintf("Removed <@%d> from the queue.", targetID))
}

func (h *CommandHandlers) handleDelete(
	ctx context.Context,
	r bot.Responder,
	queueID usecases.QueueID,
	callerID snowflake.ID,
) error {
	if _, err := h.queue.Delete(ctx, usecases.DeleteInput{QueueID: queueID, CallerID: callerID}); err != nil {
		return respondFailure(r, "delete", err)
	}
	return respondSuccess(r, "Deleted the queue.")
}

func (h *CommandHandlers) handleFriends(
	ctx context.Context,
	r bot.Responder,
	callerID snowflake.ID,
) error {
	output, err := h.queue.FriendQueues(ctx, usecases.FriendQueuesInput{CallerID: callerID})
	if err != nil {
		return respondFailure(r, "friends", err)
	}

	embed := &discordgo.MessageEmbed{Title: "Friends' Queues"}
	if len(output.Queues) == 0 {
		embed.Description = "None of your friends have a queue."
	} else {
		var sb strings.Builder
		for _, q := range output.Queues {
			fmt.Fprintf(&sb, "**%s**: `%s`\n", q.CreatorName, q.QueueID)
		}
		embed.Description = sb.String()
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func interactionUserID(i *discordgo.InteractionCreate) (snowflake.ID, error) {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return snowflake.Parse(i.Member.User.ID)
	case i.User != nil:
		return snowflake.Parse(i.User.ID)
	default:
		return 0, errors.New("interaction has no user")
	}
}

// queueEmbed renders the queue with the current track first.
func queueEmbed(queue *usecases.Queue) *discordgo.MessageEmbed {
	title := "Queue \u25B6\uFE0F" // ▶️
	if queue.IsPaused() {
		title = "Queue \u23F8\uFE0F" // ⏸️
	}
	embed := &discordgo.MessageEmbed{Title: title}

	nodes := queue.Nodes()
	if len(nodes) == 0 {
		embed.Description = "Queue is empty."
	} else {
		var sb strings.Builder
		sb.WriteString("### Now Playing\n")
		writeTrackLine(&sb, 1, nodes[0].Track)
		fmt.Fprintf(&sb, "Position: %s\n", formatPosition(time.Duration(queue.PositionMs())*time.Millisecond))
		if len(nodes) > 1 {
			sb.WriteString("### Up Next\n")
			for idx, node := range nodes[1:] {
				writeTrackLine(&sb, idx+2, node.Track)
			}
		}
		embed.Description = sb.String()
	}

	var members strings.Builder
	for _, p := range queue.Participants() {
		if queue.IsCreator(p.UserID) {
			fmt.Fprintf(&members, "<@%d> (creator)\n", p.UserID)
			continue
		}
		fmt.Fprintf(&members, "<@%d>\n", p.UserID)
	}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Participants", Value: members.String()},
	}
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("%s · v%d", queue.ID(), queue.Version()),
	}
	return embed
}

// writeTrackLine writes a single track line to the string builder.
// Escapes period to prevent Discord markdown list formatting.
func writeTrackLine(sb *strings.Builder, displayIndex int, track usecases.Track) {
	fmt.Fprintf(sb, "%d\\. %s", displayIndex, trackLink(track))
	if artists := track.ArtistLine(); artists != "" {
		fmt.Fprintf(sb, " - %s", artists)
	}
	if track.Duration > 0 {
		fmt.Fprintf(sb, " `%s`", track.FormattedDuration())
	}
	sb.WriteString("\n")
}

func trackLink(track usecases.Track) string {
	return fmt.Sprintf("[%s](%s)", track.Name, track.URI)
}

// parsePosition accepts plain seconds, m:ss or h:mm:ss.
func parsePosition(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("too many components in %q", s)
	}

	var seconds int64
	for _, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid position %q", s)
		}
		seconds = seconds*60 + n
	}
	return time.Duration(seconds) * time.Second, nil
}

func formatPosition(d time.Duration) string {
	return usecases.Track{Duration: d}.FormattedDuration()
}

// Response helpers.

func respondSuccess(r bot.Responder, description string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: description,
					Color:       colorSuccess,
				},
			},
		},
	})
}

func respondError(r bot.Responder, message string) error {
	return respondErrorTitled(r, "Error", message)
}

func respondErrorTitled(r bot.Responder, title, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       title,
					Description: message,
					Color:       colorError,
				},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

// respondFailure maps a QueueService error to a user-facing message.
func respondFailure(r bot.Responder, subcommand string, err error) error {
	var verr *usecases.ValidationError
	switch {
	case errors.Is(err, usecases.ErrLockFailed):
		slog.Warn("queue lock unavailable", "subcommand", subcommand, "error", err)
		return respondErrorTitled(r, "Busy", "The queue is busy. Try again in a moment.")
	case errors.Is(err, usecases.ErrUserLookupFailed):
		slog.Warn("user lookup failed", "subcommand", subcommand, "error", err)
		return respondErrorTitled(r, "Unavailable", "Could not look up your Discord profile.")
	case errors.As(err, &verr):
		return respondErrorTitled(r, "Invalid Input", capitalize(verr.Error())+".")
	case errors.Is(err, usecases.ErrNotFound):
		return respondErrorTitled(r, "Not Found", capitalize(err.Error())+".")
	case errors.Is(err, usecases.ErrUnauthorized):
		return respondErrorTitled(r, "Not Allowed", detail(err, usecases.ErrUnauthorized))
	case errors.Is(err, usecases.ErrConflict):
		return respondErrorTitled(r, "Conflict", detail(err, usecases.ErrConflict))
	default:
		slog.Error("queue command failed", "subcommand", subcommand, "error", err)
		return respondError(r, "Something went wrong.")
	}
}

// detail drops the kind prefix from err's message.
func detail(err, kind error) string {
	return capitalize(strings.TrimPrefix(err.Error(), kind.Error()+": ")) + "."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package discord

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/queueshare/internal/bot"
	"github.com/sglre6355/queueshare/internal/locker"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/application/ports"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/application/usecases"
	"github.com/sglre6355/queueshare/internal/modules/shared_queue/infrastructure"
)

const (
	creatorID  = "100"
	memberID   = "200"
	outsiderID = "300"
)

type stubDirectory struct {
	friends map[snowflake.ID][]ports.Friend
}

func (d *stubDirectory) ResolveUserName(_ context.Context, userID snowflake.ID) (string, error) {
	return "user-" + userID.String(), nil
}

func (d *stubDirectory) ResolveFriends(_ context.Context, userID snowflake.ID) ([]ports.Friend, error) {
	return d.friends[userID], nil
}

func newTestHandlers() (*CommandHandlers, *stubDirectory) {
	directory := &stubDirectory{friends: make(map[snowflake.ID][]ports.Friend)}
	svc := usecases.NewQueueService(
		infrastructure.NewMemoryRepository(),
		directory,
		infrastructure.NewLockerAdapter(locker.NewMemoryLocker("test"), time.Second),
		usecases.QueueServiceOptions{},
	)
	return NewCommandHandlers(svc), directory
}

func stringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func intOpt(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(value),
	}
}

func userOpt(name, userID string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionUser,
		Value: userID,
	}
}

func queueCommand(
	userID string,
	subcommand string,
	opts ...*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{
				Name: "queue",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{
						Name:    subcommand,
						Type:    discordgo.ApplicationCommandOptionSubCommand,
						Options: opts,
					},
				},
			},
			Member: &discordgo.Member{User: &discordgo.User{ID: userID}},
		},
	}
}

// run invokes /queue and returns the single embed of the response.
func run(t *testing.T, h *CommandHandlers, i *discordgo.InteractionCreate) *discordgo.MessageEmbed {
	t.Helper()
	responder := &bot.MockResponder{}
	if err := h.HandleQueue(nil, i, responder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if responder.LastResponse == nil || responder.LastResponse.Data == nil {
		t.Fatal("expected response, got nil")
	}
	if len(responder.LastResponse.Data.Embeds) != 1 {
		t.Fatalf("expected one embed, got %d", len(responder.LastResponse.Data.Embeds))
	}
	return responder.LastResponse.Data.Embeds[0]
}

func createQueue(t *testing.T, h *CommandHandlers) string {
	t.Helper()
	embed := run(t, h, queueCommand(creatorID, "create"))
	start := strings.Index(embed.Description, "`")
	end := strings.LastIndex(embed.Description, "`")
	if start < 0 || end <= start {
		t.Fatalf("expected queue id in %q", embed.Description)
	}
	return embed.Description[start+1 : end]
}

func addTrack(t *testing.T, h *CommandHandlers, userID, queueID, trackID string) *discordgo.MessageEmbed {
	t.Helper()
	return run(t, h, queueCommand(userID, "add",
		stringOpt("queue", queueID),
		stringOpt("id", trackID),
		stringOpt("name", "Track "+trackID),
		stringOpt("uri", "spotify:track:"+trackID),
		intOpt("duration_ms", 185000),
		stringOpt("artists", "A, B"),
	))
}

func TestHandleQueue_CreateIsIdempotent(t *testing.T) {
	h, _ := newTestHandlers()

	first := createQueue(t, h)
	embed := run(t, h, queueCommand(creatorID, "create"))

	if embed.Color != colorSuccess {
		t.Errorf("expected success color, got %x", embed.Color)
	}
	if !strings.Contains(embed.Description, "already have") || !strings.Contains(embed.Description, first) {
		t.Errorf("expected existing queue %s, got %q", first, embed.Description)
	}
}

func TestHandleQueue_Show(t *testing.T) {
	h, _ := newTestHandlers()
	queueID := createQueue(t, h)
	addTrack(t, h, creatorID, queueID, "t1")
	addTrack(t, h, creatorID, queueID, "t2")

	embed := run(t, h, queueCommand(creatorID, "show", stringOpt("queue", queueID)))

	if !strings.Contains(embed.Title, "⏸") {
		t.Errorf("expected paused title, got %q", embed.Title)
	}
	nowPlaying := strings.Index(embed.Description, "Now Playing")
	upNext := strings.Index(embed.Description, "Up Next")
	t1 := strings.Index(embed.Description, "Track t1")
	t2 := strings.Index(embed.Description, "Track t2")
	if nowPlaying < 0 || upNext < 0 || !(nowPlaying < t1 && t1 < upNext && upNext < t2) {
		t.Errorf("expected t1 now playing and t2 up next, got %q", embed.Description)
	}
	if !strings.Contains(embed.Description, "A, B") || !strings.Contains(embed.Description, "03:05") {
		t.Errorf("expected artists and duration, got %q", embed.Description)
	}
	if embed.Footer == nil || !strings.Contains(embed.Footer.Text, queueID) {
		t.Errorf("expected queue id in footer, got %+v", embed.Footer)
	}
}

func TestHandleQueue_Add(t *testing.T) {
	h, _ := newTestHandlers()
	queueID := createQueue(t, h)

	embed := addTrack(t, h, creatorID, queueID, "t1")

	if embed.Color != colorSuccess {
		t.Errorf("expected success color, got %x", embed.Color)
	}
	if embed.Description != "Added [Track t1](spotify:track:t1) at position 1." {
		t.Errorf("unexpected description %q", embed.Description)
	}
}

func TestHandleQueue_ErrorMessages(t *testing.T) {
	h, _ := newTestHandlers()
	queueID := createQueue(t, h)
	addTrack(t, h, creatorID, queueID, "t1")
	run(t, h, queueCommand(creatorID, "play", stringOpt("queue", queueID)))

	tests := []struct {
		name  string
		i     *discordgo.InteractionCreate
		title string
	}{
		{
			name:  "malformed queue id",
			i:     queueCommand(creatorID, "show", stringOpt("queue", "nope")),
			title: "Error",
		},
		{
			name: "unknown queue",
			i: queueCommand(creatorID, "show",
				stringOpt("queue", "00000000-0000-0000-0000-000000000000")),
			title: "Not Found",
		},
		{
			name:  "not a participant",
			i:     queueCommand(outsiderID, "show", stringOpt("queue", queueID)),
			title: "Not Allowed",
		},
		{
			name:  "remove playing head",
			i:     queueCommand(creatorID, "remove", stringOpt("queue", queueID), stringOpt("track", "t1")),
			title: "Conflict",
		},
		{
			name: "missing track fields",
			i: queueCommand(creatorID, "add",
				stringOpt("queue", queueID), stringOpt("id", "t2")),
			title: "Invalid Input",
		},
		{
			name:  "bad seek position",
			i:     queueCommand(creatorID, "seek", stringOpt("queue", queueID), stringOpt("position", "soon")),
			title: "Error",
		},
		{
			name:  "unknown subcommand",
			i:     queueCommand(creatorID, "shuffle", stringOpt("queue", queueID)),
			title: "Error",
		},
	}

	seen := make(map[string]string)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responder := &bot.MockResponder{}
			if err := h.HandleQueue(nil, tt.i, responder); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			data := responder.LastResponse.Data
			embed := data.Embeds[0]
			if embed.Color != colorError {
				t.Errorf("expected error color, got %x", embed.Color)
			}
			if embed.Title != tt.title {
				t.Errorf("expected title %q, got %q", tt.title, embed.Title)
			}
			if data.Flags != discordgo.MessageFlagsEphemeral {
				t.Errorf("expected ephemeral error, got flags %d", data.Flags)
			}
			seen[tt.title] = embed.Description
		})
	}

	if seen["Not Found"] == seen["Conflict"] || seen["Conflict"] == seen["Not Allowed"] {
		t.Errorf("expected distinct messages per error kind, got %v", seen)
	}
}

func TestHandleQueue_MembershipFlow(t *testing.T) {
	h, _ := newTestHandlers()
	queueID := createQueue(t, h)

	embed := run(t, h, queueCommand(memberID, "join", stringOpt("queue", queueID)))
	if embed.Description != "Joined <@100>'s queue." {
		t.Errorf("unexpected join description %q", embed.Description)
	}

	embed = addTrack(t, h, memberID, queueID, "t1")
	if embed.Color != colorSuccess {
		t.Errorf("expected member to add a track, got %q", embed.Description)
	}

	embed = run(t, h, queueCommand(creatorID, "kick", stringOpt("queue", queueID), userOpt("user", memberID)))
	if embed.Color != colorSuccess {
		t.Errorf("expected kick to succeed, got %q", embed.Description)
	}

	embed = addTrack(t, h, memberID, queueID, "t2")
	if embed.Title != "Not Allowed" {
		t.Errorf("expected kicked member to be refused, got %q", embed.Title)
	}

	embed = run(t, h, queueCommand(creatorID, "leave", stringOpt("queue", queueID)))
	if embed.Title != "Conflict" {
		t.Errorf("expected creator leave to conflict, got %q", embed.Title)
	}
}

func TestHandleQueue_Playback(t *testing.T) {
	h, _ := newTestHandlers()
	queueID := createQueue(t, h)
	addTrack(t, h, creatorID, queueID, "t1")
	addTrack(t, h, creatorID, queueID, "t2")
	addTrack(t, h, creatorID, queueID, "t3")

	embed := run(t, h, queueCommand(creatorID, "move",
		stringOpt("queue", queueID), stringOpt("track", "t3"), intOpt("position", 2)))
	if embed.Description != "Moved `t3` to position 2." {
		t.Errorf("unexpected move description %q", embed.Description)
	}

	embed = run(t, h, queueCommand(creatorID, "next", stringOpt("queue", queueID), stringOpt("track", "t1")))
	if !strings.Contains(embed.Description, "Track t3") {
		t.Errorf("expected t3 after t1, got %q", embed.Description)
	}

	embed = run(t, h, queueCommand(creatorID, "seek", stringOpt("queue", queueID), stringOpt("position", "1:30")))
	if embed.Description != "Seeked to 01:30." {
		t.Errorf("unexpected seek description %q", embed.Description)
	}

	embed = run(t, h, queueCommand(creatorID, "skip", stringOpt("queue", queueID)))
	if !strings.Contains(embed.Description, "Skipped [Track t1]") || !strings.Contains(embed.Description, "Now playing [Track t3]") {
		t.Errorf("unexpected skip description %q", embed.Description)
	}

	embed = run(t, h, queueCommand(creatorID, "delete", stringOpt("queue", queueID)))
	if embed.Color != colorSuccess {
		t.Errorf("expected delete to succeed, got %q", embed.Description)
	}
	embed = run(t, h, queueCommand(creatorID, "show", stringOpt("queue", queueID)))
	if embed.Title != "Not Found" {
		t.Errorf("expected deleted queue to be gone, got %q", embed.Title)
	}
}

func TestHandleQueue_Friends(t *testing.T) {
	h, directory := newTestHandlers()
	queueID := createQueue(t, h)
	directory.friends[snowflake.MustParse(memberID)] = []ports.Friend{
		{UserID: snowflake.MustParse(creatorID), Name: "Creator"},
		{UserID: snowflake.MustParse(outsiderID), Name: "Nobody"},
	}

	embed := run(t, h, queueCommand(memberID, "friends"))

	if embed.Description != "**Creator**: `"+queueID+"`\n" {
		t.Errorf("unexpected friends description %q", embed.Description)
	}

	embed = run(t, h, queueCommand(outsiderID, "friends"))
	if embed.Description != "None of your friends have a queue." {
		t.Errorf("unexpected empty description %q", embed.Description)
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{input: "90", want: 90 * time.Second},
		{input: "1:30", want: 90 * time.Second},
		{input: "1:02:03", want: time.Hour + 2*time.Minute + 3*time.Second},
		{input: " 0 ", want: 0},
		{input: "", wantErr: true},
		{input: "-5", wantErr: true},
		{input: "1:2:3:4", wantErr: true},
		{input: "a:b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parsePosition(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/diegoclair/slack-deadline-bot/internal/clock"
	"github.com/diegoclair/slack-deadline-bot/internal/domain"
	"github.com/diegoclair/slack-deadline-bot/internal/domain/contract"
	"github.com/diegoclair/slack-deadline-bot/internal/domain/entity"
	slackcmd "github.com/diegoclair/slack-deadline-bot/internal/slack"
	"github.com/dustin/go-humanize"
	"github.com/slack-go/slack"
)

type SlackHandler struct {
	deadlineService contract.DeadlineService
	signingSecret   string
}

func New(deadlineService contract.DeadlineService, signingSecret string) *SlackHandler {
	return &SlackHandler{
		deadlineService: deadlineService,
		signingSecret:   signingSecret,
	}
}

func (h *SlackHandler) HandleSlashCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	// Verify Slack signature
	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if _, err := verifier.Write(body); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := verifier.Ensure(); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	s, err := slack.SlashCommandParse(r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	cmd, err := slackcmd.ParseCommand(s.Text)
	if err != nil {
		h.respond(w, h.createErrorResponse(err.Error()))
		return
	}

	h.respond(w, h.handleCommand(r, cmd, &s))
}

func (h *SlackHandler) respond(w http.ResponseWriter, msg *slack.Msg) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(msg)
}

func (h *SlackHandler) handleCommand(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	switch cmd.Type {
	case slackcmd.CmdCreate:
		return h.handleCreate(r, cmd, slashCmd)
	case slackcmd.CmdList:
		return h.handleList(slashCmd)
	case slackcmd.CmdRemind:
		return h.handleRemind(r, cmd)
	case slackcmd.CmdDelete:
		return h.handleDelete(r, cmd)
	case slackcmd.CmdConfig:
		return h.handleConfig(r, cmd, slashCmd)
	case slackcmd.CmdHelp:
		return h.handleHelp()
	default:
		return h.createErrorResponse("Unknown command. Try `/deadline help`.")
	}
}

func (h *SlackHandler) handleCreate(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if len(cmd.Args) == 0 {
		return h.createErrorResponse("Missing project name: `/deadline create \"Name\" due=\"YYYY-MM-DD HH:MM\" role=<usergroup>`")
	}

	channelID := slashCmd.ChannelID
	if c := cmd.Options["channel"]; c != "" {
		channelID = parseChannelRef(c)
	}

	project, reminders, err := h.deadlineService.CreateProject(r.Context(), contract.CreateProjectInput{
		SlackTeamID: slashCmd.TeamID,
		Name:        cmd.Args[0],
		Description: cmd.Options["desc"],
		DueLocal:    cmd.Options["due"],
		Timezone:    cmd.Options["tz"],
		RoleID:      parseRoleRef(cmd.Options["role"]),
		ChannelID:   channelID,
		Offsets:     cmd.Options["offsets"],
		CreatedBy:   slashCmd.UserID,
	})
	if err != nil {
		return h.errorResponse(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Project *%s* created (#%d), due %s (%s).\n",
		project.Name, project.ID, formatDue(project), project.Timezone)
	if len(reminders) == 0 {
		b.WriteString("No reminders scheduled: every offset would already have passed.")
	} else {
		b.WriteString("Reminders scheduled: ")
		for i, reminder := range reminders {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(clock.In(reminder.RemindAt, project.Timezone).Format("Mon, 02 Jan 15:04"))
		}
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         b.String(),
	}
}

func (h *SlackHandler) handleList(slashCmd *slack.SlashCommand) *slack.Msg {
	projects, err := h.deadlineService.ListProjects(slashCmd.TeamID)
	if err != nil {
		return h.errorResponse(err)
	}

	if len(projects) == 0 {
		return &slack.Msg{
			ResponseType: slack.ResponseTypeEphemeral,
			Text:         "No projects found. Use `/deadline create` to add one.",
		}
	}

	var b strings.Builder
	b.WriteString("*Project deadlines:*\n")
	for _, p := range projects {
		fmt.Fprintf(&b, "• #%d *%s* — due %s (%s)\n", p.ID, p.Name, formatDue(p), p.Timezone)
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Text:         b.String(),
	}
}

func (h *SlackHandler) handleRemind(r *http.Request, cmd *slackcmd.Command) *slack.Msg {
	if len(cmd.Args) < 2 {
		return h.createErrorResponse("Usage: `/deadline remind <project-id> <offset>` (e.g. 4h)")
	}

	projectID, err := strconv.ParseInt(cmd.Args[0], 10, 64)
	if err != nil {
		return h.createErrorResponse(fmt.Sprintf("Invalid project id: %s", cmd.Args[0]))
	}

	reminders, err := h.deadlineService.AddOffsets(r.Context(), projectID, cmd.Args[1])
	if err != nil {
		return h.errorResponse(err)
	}

	times := make([]string, 0, len(reminders))
	for _, reminder := range reminders {
		times = append(times, humanize.RelTime(reminder.RemindAt, reminder.RemindAt.Add(reminder.Offset()), "before due", "before due"))
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("✅ Added %d reminder(s) to project #%d: %s", len(reminders), projectID, strings.Join(times, ", ")),
	}
}

func (h *SlackHandler) handleDelete(r *http.Request, cmd *slackcmd.Command) *slack.Msg {
	if len(cmd.Args) == 0 {
		return h.createErrorResponse("Usage: `/deadline delete <project-id>`")
	}

	projectID, err := strconv.ParseInt(cmd.Args[0], 10, 64)
	if err != nil {
		return h.createErrorResponse(fmt.Sprintf("Invalid project id: %s", cmd.Args[0]))
	}

	if err := h.deadlineService.DeleteProject(r.Context(), projectID); err != nil {
		return h.errorResponse(err)
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("🗑 Deleted project #%d and its reminders.", projectID),
	}
}

func (h *SlackHandler) handleConfig(r *http.Request, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if len(cmd.Options) == 0 {
		cfg, err := h.deadlineService.GetTeamConfig(slashCmd.TeamID)
		if err != nil {
			return h.errorResponse(err)
		}
		return &slack.Msg{
			ResponseType: slack.ResponseTypeEphemeral,
			Text:         formatConfig(cfg),
		}
	}

	cfg, err := h.deadlineService.SetTeamConfig(r.Context(), contract.TeamConfigInput{
		SlackTeamID:     slashCmd.TeamID,
		Timezone:        cmd.Options["tz"],
		DigestChannelID: parseChannelRef(cmd.Options["channel"]),
		DigestTime:      cmd.Options["time"],
	})
	if err != nil {
		return h.errorResponse(err)
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         "✅ Settings updated.\n" + formatConfig(cfg),
	}
}

func (h *SlackHandler) handleHelp() *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         slackcmd.GetHelpText(),
	}
}

func (h *SlackHandler) errorResponse(err error) *slack.Msg {
	switch {
	case domain.IsValidation(err):
		return h.createErrorResponse(err.Error())
	case errors.Is(err, domain.ErrProjectNotFound):
		return h.createErrorResponse("Project not found.")
	case errors.Is(err, domain.ErrDuplicateOffset):
		return h.createErrorResponse("That offset is already scheduled for this project.")
	default:
		return h.createErrorResponse("Something went wrong, please try again.")
	}
}

func (h *SlackHandler) createErrorResponse(text string) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         "❌ " + text,
	}
}

func formatDue(p *entity.Project) string {
	return clock.In(p.DueAt, p.Timezone).Format("Mon, 02 Jan 2006 15:04")
}

func formatConfig(cfg *entity.TeamConfig) string {
	digest := "not configured"
	if cfg.DigestChannelID != "" {
		digest = fmt.Sprintf("<#%s> at %s", cfg.DigestChannelID, cfg.DigestTime)
	}
	return fmt.Sprintf("*Timezone:* %s\n*Daily digest:* %s", cfg.Timezone, digest)
}

// parseChannelRef extracts the channel id from a <#C123|name> mention, also
// accepting a bare id.
func parseChannelRef(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(ref, "<#")
	ref = strings.TrimSuffix(ref, ">")
	if id, _, ok := strings.Cut(ref, "|"); ok {
		return id
	}
	return ref
}

// parseRoleRef extracts the user group id from a <!subteam^S123|@handle>
// mention, also accepting a bare id or the special here/channel groups.
func parseRoleRef(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(ref, "<!subteam^")
	ref = strings.TrimPrefix(ref, "<!")
	ref = strings.TrimSuffix(ref, ">")
	if id, _, ok := strings.Cut(ref, "|"); ok {
		return id
	}
	return ref
}

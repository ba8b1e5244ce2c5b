package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ouge98-max/your-repo-sub000/cmd/superapp/internal/output"
	"github.com/ouge98-max/your-repo-sub000/internal/models"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat commands",
	Long: `List chats, read and send messages.
Messages sent while offline are queued locally and delivered on the next sync.`,
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your chats",
	RunE:  runChatList,
}

var chatShowCmd = &cobra.Command{
	Use:   "show CHAT_ID",
	Short: "Show the messages in a chat",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatShow,
}

var chatCreateCmd = &cobra.Command{
	Use:   "create USER_ID...",
	Short: "Start a chat with one or more users",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChatCreate,
}

var chatSendCmd = &cobra.Command{
	Use:   "send CHAT_ID MESSAGE...",
	Short: "Send a message",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runChatSend,
}

var chatSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Send every queued message now",
	RunE:  runChatSync,
}

var chatQueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List messages waiting to be sent",
	RunE:  runChatQueue,
}

var chatNameFlag string

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.AddCommand(chatListCmd, chatShowCmd, chatCreateCmd, chatSendCmd, chatSyncCmd, chatQueueCmd)

	chatCreateCmd.Flags().StringVarP(&chatNameFlag, "name", "n", "", "group name")
}

func runChatList(cmd *cobra.Command, args []string) error {
	s, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	chats := s.app.Chats()
	sort.Slice(chats, func(i, j int) bool { return chats[i].UpdatedAt > chats[j].UpdatedAt })
	if jsonOutput() {
		return output.JSON(chats)
	}
	if len(chats) == 0 {
		output.Info("No chats yet. Start one with 'superapp chat create USER_ID'.")
		return nil
	}

	me := s.app.CurrentUser()
	rows := make([][]string, 0, len(chats))
	for _, c := range chats {
		last := ""
		if n := len(c.Messages); n > 0 {
			last = c.Messages[n-1].Text
		}
		rows = append(rows, []string{c.ID, chatTitle(s, c, me.ID), last, output.Timestamp(c.UpdatedAt)})
	}
	output.Table([]string{"ID", "Chat", "Last message", "Updated"}, rows)
	return nil
}

func runChatShow(cmd *cobra.Command, args []string) error {
	s, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	chat, ok := s.app.Chat(args[0])
	if !ok {
		return fmt.Errorf("chat %s not found", args[0])
	}
	if jsonOutput() {
		return output.JSON(chat)
	}

	output.Header(chatTitle(s, chat, s.app.CurrentUser().ID))
	rows := make([][]string, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		status := string(m.Status)
		if status == "" {
			status = string(models.MessageSent)
		}
		rows = append(rows, []string{output.Timestamp(m.Timestamp), senderName(s, m.SenderID), m.Text, output.FormatStatus(status)})
	}
	output.Table([]string{"Time", "From", "Message", "Status"}, rows)
	return nil
}

func runChatCreate(cmd *cobra.Command, args []string) error {
	s, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	chat, err := s.client.CreateChat(cmd.Context(), chatNameFlag, args)
	if err != nil {
		return err
	}
	if err := s.app.RefreshChats(cmd.Context()); err != nil {
		return err
	}

	if jsonOutput() {
		return output.JSON(chat)
	}
	output.Success("Chat created: " + chat.ID)
	return nil
}

func runChatSend(cmd *cobra.Command, args []string) error {
	s, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	msg, err := s.app.SendMessage(cmd.Context(), args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if jsonOutput() {
		return output.JSON(msg)
	}
	if msg.Status == models.MessageQueued {
		output.Info("Queued as " + msg.ID)
		return nil
	}
	output.Success("Sent")
	return nil
}

func runChatSync(cmd *cobra.Command, args []string) error {
	s, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.app.SyncQueuedMessages(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput() {
		return output.JSON(res)
	}
	if res.Sent == 0 && res.Failed == 0 {
		output.Info("Nothing to send.")
		return nil
	}
	output.Success(fmt.Sprintf("Sent %d queued messages, %d still waiting", res.Sent, res.Failed))
	return nil
}

func runChatQueue(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	queued, err := s.store.GetQueuedMessages(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput() {
		return output.JSON(queued)
	}
	if len(queued) == 0 {
		output.Info("Outbox is empty.")
		return nil
	}

	rows := make([][]string, 0, len(queued))
	for _, q := range queued {
		rows = append(rows, []string{q.ID, q.ChatID, q.Text, output.Timestamp(q.Timestamp)})
	}
	output.Table([]string{"ID", "Chat", "Message", "Written"}, rows)
	return nil
}

func chatTitle(s *session, c models.Chat, selfID string) string {
	if c.Name != "" {
		return c.Name
	}
	names := make([]string, 0, len(c.Members))
	for _, id := range c.Members {
		if id == selfID {
			continue
		}
		names = append(names, senderName(s, id))
	}
	return strings.Join(names, ", ")
}

func senderName(s *session, id string) string {
	if u, ok := s.app.User(id); ok {
		return u.Name
	}
	return output.Short(id)
}

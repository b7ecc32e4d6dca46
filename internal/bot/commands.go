package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"economy_server/internal/domain"
	"economy_server/internal/service"

	"github.com/google/uuid"
)

// telegramNamespace derives stable player ids for bot operators.
var telegramNamespace = uuid.MustParse("6f1d8a52-3c1b-4f0e-9a57-2d4c1e7b9f30")

// Operator is the admin identity a Telegram user acts as.
func Operator(telegramID int64) domain.Player {
	id := strconv.FormatInt(telegramID, 10)
	return domain.Player{
		ID:    uuid.NewSHA1(telegramNamespace, []byte(id)),
		Name:  "tg:" + id,
		Admin: true,
	}
}

// Commands renders admin command replies as Telegram HTML.
type Commands struct {
	Admin   *service.AdminService
	Economy *service.Economy
	Market  *service.Marketplace
}

// Run executes one command for actor and returns the reply text.
func (c *Commands) Run(actor domain.Player, command, args string) string {
	switch command {
	case "start", "help":
		return helpMessage
	case "stats":
		return c.stats()
	case "player":
		return c.player(args)
	case "top":
		return c.top(args)
	case "eco":
		return c.eco(actor, args)
	case "feature", "unfeature":
		return c.feature(actor, args, command == "feature")
	case "delshop":
		return c.deleteShop(actor, args)
	default:
		return "❌ Unknown command. Use /help for the list."
	}
}

const helpMessage = `<b>🤖 Economy admin commands</b>

<b>📊 Stats:</b>
/stats - Economy overview
/top [page] - Richest players

<b>👤 Players:</b>
/player &lt;name|uuid&gt; - Player details
/eco &lt;add|remove|set&gt; &lt;name|uuid&gt; &lt;amount&gt; - Adjust a balance

<b>🏪 Shops:</b>
/feature &lt;shop&gt; - Feature a shop
/unfeature &lt;shop&gt; - Remove the featured flag
/delshop &lt;shop&gt; - Delete a shop and return its stock`

func (c *Commands) stats() string {
	s := c.Admin.GetStats()
	return fmt.Sprintf(`<b>📊 Economy stats</b>

<b>👥 Players:</b>
• Known: %d
• Accounts: %d

<b>💰 Money:</b>
• Total supply: %s
• Tax collected: %s

<b>🏪 Market:</b>
• Shops: %d
• Listings: %d

<b>🪙 Coinflip:</b>
• Pending challenges: %d
• Awaiting reveal: %d`,
		s.PlayersKnown,
		s.Accounts,
		domain.FormatAmount(s.TotalSupply),
		domain.FormatAmount(s.TaxCollected),
		s.Shops,
		s.Listings,
		s.PendingChallenges,
		s.InFlightWagers,
	)
}

func (c *Commands) player(args string) string {
	ref := strings.TrimSpace(args)
	if ref == "" {
		return "❌ Usage: /player <name|uuid>"
	}
	info, err := c.Admin.GetPlayer(ref)
	if err != nil {
		return errorReply(err)
	}
	return fmt.Sprintf(`<b>👤 %s</b>

• ID: <code>%s</code>
• 💰 Balance: %s
• 🏆 Rank: #%d
• 🔥 Daily streak: %d
• 🏪 Shops: %d
• 📜 Recent transactions: %d`,
		info.Player.Name,
		info.Player.ID,
		domain.FormatAmount(info.Balance),
		info.Rank,
		info.Rewards.Streak,
		len(info.Shops),
		len(info.Transactions),
	)
}

func (c *Commands) top(args string) string {
	page := 1
	if a := strings.TrimSpace(args); a != "" {
		n, err := strconv.Atoi(a)
		if err != nil {
			return "❌ Usage: /top [page]"
		}
		page = n
	}
	board := c.Economy.Leaderboard(uuid.Nil, page)
	if len(board.Entries) == 0 {
		return "No balances yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>🏆 Top balances</b> (page %d/%d)\n\n", board.Page, board.TotalPages)
	for _, e := range board.Entries {
		fmt.Fprintf(&b, "%d. %s - %s\n", e.Rank, e.Name, domain.FormatAmount(e.Balance))
	}
	return b.String()
}

func (c *Commands) eco(actor domain.Player, args string) string {
	parts := strings.Fields(args)
	if len(parts) != 3 {
		return "❌ Usage: /eco <add|remove|set> <name|uuid> <amount>"
	}
	amount, err := domain.ParseAmount(parts[2])
	if err != nil {
		return "❌ Invalid amount"
	}
	res, err := c.Economy.Admin(actor, service.AdminOp(strings.ToLower(parts[0])), parts[1], amount)
	if err != nil {
		return errorReply(err)
	}
	return fmt.Sprintf("✅ %s: %s → %s", res.Player.Name, domain.FormatAmount(res.Old), domain.FormatAmount(res.Balance))
}

func (c *Commands) feature(actor domain.Player, args string, featured bool) string {
	ref := strings.TrimSpace(args)
	if ref == "" {
		return "❌ Usage: /feature <shop>"
	}
	shop, err := c.Market.SetFeatured(actor, ref, featured)
	if err != nil {
		return errorReply(err)
	}
	if featured {
		return fmt.Sprintf("⭐ %s is now featured", shop.Name)
	}
	return fmt.Sprintf("✅ %s is no longer featured", shop.Name)
}

func (c *Commands) deleteShop(actor domain.Player, args string) string {
	ref := strings.TrimSpace(args)
	if ref == "" {
		return "❌ Usage: /delshop <shop>"
	}
	shop, err := c.Market.AdminDelete(actor, ref)
	if err != nil {
		return errorReply(err)
	}
	return fmt.Sprintf("🗑 Deleted %s (owner %s)", shop.Name, shop.OwnerName)
}

func errorReply(err error) string {
	switch {
	case errors.Is(err, service.ErrPlayerNotFound), errors.Is(err, service.ErrShopNotFound):
		return "❌ Not found: " + err.Error()
	default:
		return "❌ Error: " + err.Error()
	}
}

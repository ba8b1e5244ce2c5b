package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ouge98-max/your-repo-sub000/cmd/superapp/internal/output"
	"github.com/ouge98-max/your-repo-sub000/internal/models"
	"github.com/ouge98-max/your-repo-sub000/internal/payment"
	"github.com/ouge98-max/your-repo-sub000/internal/pricing"
)

var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Make a payment",
	Long: `Every payment asks for your 4-digit PIN before anything is sent.
After a successful payment your balance and chats are refreshed.`,
}

var (
	pinFlag      string
	amountFlag   float64
	toFlag       string
	noteFlag     string
	sourceFlag   string
	destFlag     string
	operatorFlag string

	billerIDFlag   string
	billerNameFlag string
	categoryFlag   string
	vatFlag        float64
	accountFlag    string

	kindFlag     string
	providerFlag string
	fromFlag     string
	destToFlag   string
	dateFlag     string
	seatsFlag    int

	countryFlag  string
	currencyFlag string
	rateFlag     float64

	productFlag  string
	priceFlag    float64
	qtyFlag      int
	addressFlag  string
	itemsFlag    []string
	deliveryFlag float64

	giftTypeFlag string
	messageFlag  string
)

// intentBuilders turns the parsed flags of each pay subcommand into an intent.
var intentBuilders = map[string]func() (payment.Intent, error){
	"send": func() (payment.Intent, error) {
		return payment.SendMoney{RecipientID: toFlag, Amount: amountFlag, Note: noteFlag}, nil
	},
	"add": func() (payment.Intent, error) {
		return payment.AddMoney{Source: sourceFlag, Amount: amountFlag}, nil
	},
	"withdraw": func() (payment.Intent, error) {
		return payment.Withdraw{Destination: destFlag, Amount: amountFlag}, nil
	},
	"save": func() (payment.Intent, error) {
		return payment.SavingsDeposit{Amount: amountFlag}, nil
	},
	"unsave": func() (payment.Intent, error) {
		return payment.SavingsWithdraw{Amount: amountFlag}, nil
	},
	"recharge": func() (payment.Intent, error) {
		return payment.MobileRecharge{OperatorName: operatorFlag, Phone: phoneFlag, Amount: amountFlag}, nil
	},
	"bill": func() (payment.Intent, error) {
		return payment.BillPayment{
			Biller:        models.Biller{ID: billerIDFlag, Name: billerNameFlag, Category: categoryFlag, VATRate: vatFlag},
			AccountNumber: accountFlag,
			Amount:        amountFlag,
		}, nil
	},
	"ticket": func() (payment.Intent, error) {
		return payment.TicketPurchase{
			Ticket: models.Ticket{Kind: kindFlag, Provider: providerFlag, From: fromFlag, To: destToFlag, Date: dateFlag, Seats: seatsFlag},
			Amount: amountFlag,
		}, nil
	},
	"intl": func() (payment.Intent, error) {
		return payment.InternationalTransfer{
			RecipientName: toFlag,
			Country:       countryFlag,
			BankAccount:   accountFlag,
			Currency:      currencyFlag,
			ExchangeRate:  rateFlag,
			Amount:        amountFlag,
		}, nil
	},
	"product": func() (payment.Intent, error) {
		if qtyFlag < 1 {
			return nil, fmt.Errorf("--qty must be at least 1")
		}
		return payment.ProductPurchase{Item: models.CartItem{
			ProductID:       productFlag,
			Name:            nameFlag,
			Price:           priceFlag,
			Quantity:        qtyFlag,
			DeliveryAddress: addressFlag,
		}}, nil
	},
	"cart": func() (payment.Intent, error) {
		items := make([]models.CartItem, 0, len(itemsFlag))
		for _, raw := range itemsFlag {
			item, err := parseCartItem(raw)
			if err != nil {
				return nil, err
			}
			if item.DeliveryAddress == "" {
				item.DeliveryAddress = addressFlag
			}
			items = append(items, item)
		}
		return payment.CartCheckout{Items: items, DeliveryFee: deliveryFlag}, nil
	},
	"gift": func() (payment.Intent, error) {
		return payment.GiftPurchase{RecipientID: toFlag, GiftType: giftTypeFlag, Message: messageFlag, Amount: amountFlag}, nil
	},
}

func init() {
	rootCmd.AddCommand(payCmd)

	sub := func(use, short string) *cobra.Command {
		c := &cobra.Command{Use: use, Short: short, Args: cobra.NoArgs, RunE: runPay}
		c.Flags().StringVar(&pinFlag, "pin", "", "4-digit transaction PIN (prompted if omitted)")
		payCmd.AddCommand(c)
		return c
	}
	amount := func(c *cobra.Command) {
		c.Flags().Float64VarP(&amountFlag, "amount", "a", 0, "amount")
	}

	send := sub("send", "Send money to another user")
	amount(send)
	send.Flags().StringVar(&toFlag, "to", "", "recipient user ID")
	send.Flags().StringVar(&noteFlag, "note", "", "optional note")

	add := sub("add", "Add money from a card, bank or agent")
	amount(add)
	add.Flags().StringVar(&sourceFlag, "source", "card", "funding source")

	withdraw := sub("withdraw", "Cash out to a bank or agent")
	amount(withdraw)
	withdraw.Flags().StringVar(&destFlag, "destination", "bank", "payout destination")

	amount(sub("save", "Move money into savings"))
	amount(sub("unsave", "Move savings back to the wallet"))

	recharge := sub("recharge", "Top up a mobile number")
	amount(recharge)
	recharge.Flags().StringVar(&operatorFlag, "operator", "", "mobile operator")
	recharge.Flags().StringVarP(&phoneFlag, "phone", "p", "", "phone number")

	bill := sub("bill", "Pay a utility or service bill")
	amount(bill)
	bill.Flags().StringVar(&billerIDFlag, "biller-id", "", "biller ID")
	bill.Flags().StringVar(&billerNameFlag, "biller", "", "biller name")
	bill.Flags().StringVar(&categoryFlag, "category", "utility", "biller category")
	bill.Flags().Float64Var(&vatFlag, "vat", 0, "VAT rate, e.g. 0.05")
	bill.Flags().StringVar(&accountFlag, "account", "", "customer account number")

	ticket := sub("ticket", "Buy a bus, train, flight or event ticket")
	amount(ticket)
	ticket.Flags().StringVar(&kindFlag, "kind", "bus", "ticket kind")
	ticket.Flags().StringVar(&providerFlag, "provider", "", "operator or venue")
	ticket.Flags().StringVar(&fromFlag, "from", "", "departure")
	ticket.Flags().StringVar(&destToFlag, "to", "", "destination")
	ticket.Flags().StringVar(&dateFlag, "date", "", "travel or event date")
	ticket.Flags().IntVar(&seatsFlag, "seats", 1, "number of seats")

	intl := sub("intl", "Send money abroad")
	amount(intl)
	intl.Flags().StringVar(&toFlag, "recipient", "", "recipient name")
	intl.Flags().StringVar(&countryFlag, "country", "", "destination country")
	intl.Flags().StringVar(&accountFlag, "account", "", "recipient bank account")
	intl.Flags().StringVar(&currencyFlag, "currency", "USD", "payout currency")
	intl.Flags().Float64Var(&rateFlag, "rate", 0, "exchange rate")

	product := sub("product", "Buy one marketplace product")
	product.Flags().StringVar(&productFlag, "id", "", "product ID")
	product.Flags().StringVarP(&nameFlag, "name", "n", "", "product name")
	product.Flags().Float64Var(&priceFlag, "price", 0, "unit price")
	product.Flags().IntVar(&qtyFlag, "qty", 1, "quantity")
	product.Flags().StringVar(&addressFlag, "address", "", "delivery address")

	cart := sub("cart", "Check out a cart")
	cart.Flags().StringArrayVar(&itemsFlag, "item", nil, "cart line as id:name:price:qty[:address], repeatable")
	cart.Flags().StringVar(&addressFlag, "address", "", "delivery address for lines without one")
	cart.Flags().Float64Var(&deliveryFlag, "delivery-fee", 0, "delivery fee for the order")

	gift := sub("gift", "Buy a gift card for another user")
	amount(gift)
	gift.Flags().StringVar(&toFlag, "to", "", "recipient user ID")
	gift.Flags().StringVar(&giftTypeFlag, "type", "", "gift type")
	gift.Flags().StringVar(&messageFlag, "message", "", "gift message")
}

func runPay(cmd *cobra.Command, args []string) error {
	build, ok := intentBuilders[cmd.Name()]
	if !ok {
		return fmt.Errorf("unknown payment %q", cmd.Name())
	}
	intent, err := build()
	if err != nil {
		return err
	}

	s, err := signedIn(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	u := s.app.CurrentUser()
	printSummary(intent, u.Currency)

	pin := pinFlag
	if pin == "" {
		pin = prompt("PIN")
	}

	tx, err := s.app.ProcessPayment(cmd.Context(), pin, intent)
	if err != nil {
		var checkout *payment.CheckoutError
		if errors.As(err, &checkout) && len(checkout.Completed) > 0 {
			output.Info(fmt.Sprintf("Stopped at item %d. Already purchased: %s",
				checkout.Index+1, strings.Join(checkout.Completed, ", ")))
		}
		// The toast already told the user.
		return nil
	}

	if jsonOutput() {
		return output.JSON(tx)
	}
	rows := [][]string{
		{"Transaction", tx.ID},
		{"Type", string(tx.Type)},
		{"Amount", output.Money(tx.Amount, tx.Currency)},
		{"Peer", tx.Peer},
		{"Status", output.FormatStatus(string(tx.Status))},
	}
	if tx.Tax != nil {
		rows = append(rows, []string{"VAT", fmt.Sprintf("%.2f (%.0f%%)", tx.Tax.VAT, tx.Tax.Rate*100)})
	}
	if now := s.app.CurrentUser(); now != nil {
		rows = append(rows, []string{"New balance", output.Money(now.Balance, now.Currency)})
	}
	output.KeyValue(rows)
	return nil
}

func printSummary(intent payment.Intent, currency string) {
	output.Header(fmt.Sprintf("Confirm %s", intent.Type()))
	switch in := intent.(type) {
	case payment.BillPayment:
		if tax, err := pricing.Tax(in.Amount, in.Biller.VATRate); err == nil && tax != nil {
			output.KeyValue([][]string{
				{"Bill", output.Money(tax.Base, currency)},
				{"VAT", output.Money(tax.VAT, currency)},
			})
		}
	case payment.InternationalTransfer:
		if received, err := pricing.Convert(in.Amount, in.ExchangeRate); err == nil {
			output.KeyValue([][]string{{"Recipient gets", fmt.Sprintf("%.2f %s", received, in.Currency)}})
		}
	case payment.CartCheckout:
		totals := pricing.Cart(in.Items, in.DeliveryFee)
		output.KeyValue([][]string{
			{"Items", strconv.Itoa(totals.Units)},
			{"Subtotal", output.Money(totals.Subtotal, currency)},
			{"Delivery", output.Money(totals.DeliveryFee, currency)},
		})
	}
	output.KeyValue([][]string{{"Total", output.Money(intent.Total(), currency)}})
}

// parseCartItem reads "id:name:price:qty[:address]".
func parseCartItem(raw string) (models.CartItem, error) {
	parts := strings.SplitN(raw, ":", 5)
	if len(parts) < 4 {
		return models.CartItem{}, fmt.Errorf("invalid cart item %q: want id:name:price:qty[:address]", raw)
	}
	price, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return models.CartItem{}, fmt.Errorf("invalid price in %q: %w", raw, err)
	}
	qty, err := strconv.Atoi(parts[3])
	if err != nil {
		return models.CartItem{}, fmt.Errorf("invalid quantity in %q: %w", raw, err)
	}
	if qty < 1 {
		return models.CartItem{}, fmt.Errorf("invalid quantity in %q: must be at least 1", raw)
	}
	item := models.CartItem{ProductID: parts[0], Name: parts[1], Price: price, Quantity: qty}
	if len(parts) == 5 {
		item.DeliveryAddress = parts[4]
	}
	return item, nil
}

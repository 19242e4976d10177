// internal/economy/wallet.go
package economy

import (
	"go-td-core/internal/event"

	"go.uber.org/zap"
)

// Wallet — деньги игрока. Награда начисляется за каждого уничтоженного агента.
type Wallet struct {
	logger     *zap.Logger
	dispatcher *event.Dispatcher
	money      int
	earned     int
	spent      int
	sub        *event.Subscription
}

func NewWallet(startingMoney int, dispatcher *event.Dispatcher, logger *zap.Logger) *Wallet {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Wallet{
		logger:     logger.Named("wallet"),
		dispatcher: dispatcher,
		money:      startingMoney,
	}
	w.sub = dispatcher.Subscribe(event.AgentDestroyed, w)
	return w
}

// OnEvent обрабатывает события, на которые подписан кошелёк.
func (w *Wallet) OnEvent(e event.Event) {
	if e.Type != event.AgentDestroyed {
		return
	}
	if data, ok := e.Data.(event.AgentData); ok && data.Reward > 0 {
		w.earned += data.Reward
		w.AddMoney(data.Reward)
	}
}

func (w *Wallet) Close() { w.sub.Unsubscribe() }

// AddMoney ignores non-positive amounts.
func (w *Wallet) AddMoney(amount int) {
	if amount <= 0 {
		return
	}
	w.money += amount
	w.changed()
}

func (w *Wallet) CanAfford(cost int) bool {
	return cost >= 0 && w.money >= cost
}

// Spend is an expected refusal when the balance is short; it never goes negative.
func (w *Wallet) Spend(cost int) bool {
	if !w.CanAfford(cost) {
		w.logger.Debug("not enough money", zap.Int("cost", cost), zap.Int("money", w.money))
		return false
	}
	if cost == 0 {
		return true
	}
	w.money -= cost
	w.spent += cost
	w.changed()
	return true
}

func (w *Wallet) Money() int  { return w.money }
func (w *Wallet) Earned() int { return w.earned }
func (w *Wallet) Spent() int  { return w.spent }

func (w *Wallet) changed() {
	w.dispatcher.Dispatch(event.Event{Type: event.MoneyChanged, Data: w.money})
}

package chain

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	// Connection states
	StateDisconnected = "disconnected"
	StateConnecting   = "connecting"
	StateConnected    = "connected"

	// Reconnect settings
	maxReconnectAttempts = 10
	reconnectDelay       = 5 * time.Second
)

// CustodyUpdate reports an observed balance change on a monitored custody
// token account.
type CustodyUpdate struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
	Slot    uint64 `json:"slot"`
}

// CustodyCallback is invoked for every observed custody balance change.
type CustodyCallback func(update *CustodyUpdate)

// custodyMonitor watches one custody token account over the RPC websocket.
type custodyMonitor struct {
	account  string
	state    string
	conn     *websocket.Conn
	callback CustodyCallback
	stopCh   chan struct{}
	mu       sync.Mutex
}

// CustodyMonitorManager tracks custody-account subscriptions, one monitor per
// account. Used to reconcile on-chain custody balances against vault state.
type CustodyMonitorManager struct {
	monitors map[string]*custodyMonitor
	wsURL    string
	mu       sync.Mutex
}

// NewCustodyMonitorManager creates a manager against the configured ws endpoint.
func NewCustodyMonitorManager() (*CustodyMonitorManager, error) {
	wsURL := os.Getenv("DEFAULT_SOLANA_WS")
	if wsURL == "" {
		return nil, fmt.Errorf("Solana websocket endpoint not configured")
	}
	return &CustodyMonitorManager{
		monitors: make(map[string]*custodyMonitor),
		wsURL:    wsURL,
	}, nil
}

// StartMonitoring subscribes to a custody token account. Starting an already
// monitored account is a no-op.
func (m *CustodyMonitorManager) StartMonitoring(account string, callback CustodyCallback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.monitors[account]; exists {
		return nil
	}

	monitor := &custodyMonitor{
		account:  account,
		state:    StateDisconnected,
		callback: callback,
		stopCh:   make(chan struct{}),
	}
	m.monitors[account] = monitor

	go monitor.run(m.wsURL)
	log.Infof("Started monitoring custody account: %s", account)
	return nil
}

// StopMonitoring unsubscribes from a custody token account.
func (m *CustodyMonitorManager) StopMonitoring(account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	monitor, exists := m.monitors[account]
	if !exists {
		return fmt.Errorf("account %s is not being monitored", account)
	}
	close(monitor.stopCh)
	delete(m.monitors, account)
	log.Infof("Stopped monitoring custody account: %s", account)
	return nil
}

// run connects, subscribes and pumps notifications until stopped, with
// bounded reconnect attempts.
func (mon *custodyMonitor) run(wsURL string) {
	attempts := 0
	for {
		select {
		case <-mon.stopCh:
			mon.closeConn()
			return
		default:
		}

		if err := mon.connectAndSubscribe(wsURL); err != nil {
			attempts++
			log.Errorf("Custody monitor %s connection failed (attempt %d/%d): %v",
				mon.account, attempts, maxReconnectAttempts, err)
			if attempts >= maxReconnectAttempts {
				log.Errorf("Custody monitor %s giving up after %d attempts", mon.account, attempts)
				return
			}
			time.Sleep(reconnectDelay)
			continue
		}
		attempts = 0

		mon.readLoop()
		mon.closeConn()

		select {
		case <-mon.stopCh:
			return
		default:
			log.Warnf("Custody monitor %s disconnected, reconnecting...", mon.account)
			time.Sleep(reconnectDelay)
		}
	}
}

func (mon *custodyMonitor) connectAndSubscribe(wsURL string) error {
	mon.setState(StateConnecting)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		mon.setState(StateDisconnected)
		return fmt.Errorf("failed to dial websocket: %w", err)
	}

	subscribe := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "accountSubscribe",
		"params": []interface{}{
			mon.account,
			map[string]interface{}{
				"encoding":   "jsonParsed",
				"commitment": "confirmed",
			},
		},
	}
	if err := conn.WriteJSON(subscribe); err != nil {
		conn.Close()
		mon.setState(StateDisconnected)
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	mon.mu.Lock()
	mon.conn = conn
	mon.mu.Unlock()
	mon.setState(StateConnected)
	return nil
}

// accountNotification is the subset of the accountNotification payload we use.
type accountNotification struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Context struct {
				Slot uint64 `json:"slot"`
			} `json:"context"`
			Value struct {
				Data struct {
					Parsed struct {
						Info struct {
							TokenAmount struct {
								Amount string `json:"amount"`
							} `json:"tokenAmount"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"data"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

func (mon *custodyMonitor) readLoop() {
	for {
		select {
		case <-mon.stopCh:
			return
		default:
		}

		_, message, err := mon.conn.ReadMessage()
		if err != nil {
			log.Debugf("Custody monitor %s read error: %v", mon.account, err)
			return
		}

		var notification accountNotification
		if err := json.Unmarshal(message, &notification); err != nil {
			log.Debugf("Custody monitor %s skipping unparseable message: %v", mon.account, err)
			continue
		}
		if notification.Method != "accountNotification" {
			continue
		}

		amount := notification.Params.Result.Value.Data.Parsed.Info.TokenAmount.Amount
		balance, err := strconv.ParseUint(amount, 10, 64)
		if err != nil {
			log.Warnf("Custody monitor %s unparseable balance %q: %v", mon.account, amount, err)
			continue
		}

		mon.callback(&CustodyUpdate{
			Account: mon.account,
			Balance: balance,
			Slot:    notification.Params.Result.Context.Slot,
		})
	}
}

func (mon *custodyMonitor) setState(state string) {
	mon.mu.Lock()
	mon.state = state
	mon.mu.Unlock()
}

func (mon *custodyMonitor) closeConn() {
	mon.mu.Lock()
	if mon.conn != nil {
		mon.conn.Close()
		mon.conn = nil
	}
	mon.mu.Unlock()
	mon.setState(StateDisconnected)
}

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/wfunc/landlord/cards"
	"github.com/wfunc/landlord/network"
)

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	packet, err := network.Encode(msgID, data)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	var (
		addr     string
		identity string
	)
	root := &cobra.Command{
		Use:   "landlord-client",
		Short: "Interactive client for the landlord table server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(addr, identity)
		},
	}
	root.Flags().StringVar(&addr, "addr", "localhost:8080", "server address")
	root.Flags().StringVar(&identity, "identity", "", "player identity")
	_ = root.MarkFlagRequired("identity")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(addr, identity string) error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	pterm.Info.Printfln("Connecting to %s as %s", u.String(), identity)

	header := http.Header{}
	header.Set("X-Landlord-Identity", identity)
	c, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				pterm.Error.Println("Read error:", err)
				return
			}
			packet, err := network.Decode(message)
			if err != nil {
				pterm.Warning.Printfln("Received invalid packet of size %d", len(message))
				continue
			}
			render(packet)
		}
	}()

	lines := make(chan string)
	go func() {
		reader := bufio.NewScanner(os.Stdin)
		for reader.Scan() {
			lines <- reader.Text()
		}
		close(lines)
	}()

	pterm.Info.Println("Commands: create | find | get <id> | watch <id> | join <id> <wager> [beneficiary] | bid <id> <score> | play <id> <card codes...> | end <id> <winner>")

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return nil
		case <-interrupt:
			pterm.Info.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				pterm.Error.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return nil
		case <-ticker.C:
			if err := send(c, network.MsgTypeHeartbeat, nil); err != nil {
				return err
			}
		case text, ok := <-lines:
			if !ok {
				return nil
			}
			msgID, req, err := parseCommand(strings.Fields(text), identity)
			if err != nil {
				pterm.Warning.Println(err)
				continue
			}
			if msgID == 0 {
				continue
			}
			if err := send(c, msgID, req); err != nil {
				return err
			}
		}
	}
}

// parseCommand 把输入行转换为请求；空行返回 msgID 0
func parseCommand(fields []string, identity string) (uint16, interface{}, error) {
	if len(fields) == 0 {
		return 0, nil, nil
	}
	nums := make([]uint64, 0, len(fields)-1)
	for _, f := range fields[1:] {
		n, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			if fields[0] == "join" && len(nums) == 2 {
				break
			}
			return 0, nil, fmt.Errorf("%q is not a number", f)
		}
		nums = append(nums, n)
	}
	need := func(n int) error {
		if len(nums) < n {
			return fmt.Errorf("%s needs %d numeric arguments", fields[0], n)
		}
		return nil
	}

	switch fields[0] {
	case "create":
		return network.MsgTypeCreateTable, struct{}{}, nil
	case "find":
		return network.MsgTypeFindTable, struct{}{}, nil
	case "get", "watch":
		if err := need(1); err != nil {
			return 0, nil, err
		}
		msgID := uint16(network.MsgTypeGetTable)
		if fields[0] == "watch" {
			msgID = network.MsgTypeWatchTable
		}
		return msgID, network.TableRequest{TableID: nums[0]}, nil
	case "join":
		if err := need(2); err != nil {
			return 0, nil, err
		}
		beneficiary := identity
		if len(fields) > 3 {
			beneficiary = fields[3]
		}
		return network.MsgTypeJoinTable, network.JoinTableRequest{TableID: nums[0], Wager: nums[1], Beneficiary: beneficiary}, nil
	case "bid":
		if err := need(2); err != nil {
			return 0, nil, err
		}
		if nums[1] > 255 {
			return 0, nil, fmt.Errorf("score %d out of range", nums[1])
		}
		return network.MsgTypeBid, network.BidRequest{TableID: nums[0], Score: uint8(nums[1])}, nil
	case "play":
		if err := need(1); err != nil {
			return 0, nil, err
		}
		codes := make([]uint8, 0, len(nums)-1)
		for _, n := range nums[1:] {
			if n >= cards.DeckSize {
				return 0, nil, fmt.Errorf("card code %d out of range", n)
			}
			codes = append(codes, uint8(n))
		}
		cs, err := cards.Parse(codes)
		if err != nil {
			return 0, nil, err
		}
		return network.MsgTypePlayHand, network.PlayHandRequest{TableID: nums[0], Cards: cs}, nil
	case "end":
		if err := need(2); err != nil {
			return 0, nil, err
		}
		return network.MsgTypeEndGame, network.EndGameRequest{TableID: nums[0], WinnerIndex: int(nums[1])}, nil
	}
	return 0, nil, fmt.Errorf("unknown command %q", fields[0])
}

package main

import (
	"encoding/json"
	"strings"

	"github.com/pterm/pterm"

	"github.com/wfunc/landlord/cards"
	"github.com/wfunc/landlord/network"
	"github.com/wfunc/landlord/table"
)

func render(packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		return
	case network.MsgTypeError:
		var e network.ErrorResponse
		if decodeInto(packet, &e) {
			pterm.Error.Printfln("%s (%s): %s", e.Code, e.Kind, e.Message)
		}
	case network.MsgTypeTableCreated:
		var c network.TableCreated
		if decodeInto(packet, &c) {
			pterm.Success.Printfln("Table %d created", c.TableID)
		}
	case network.MsgTypeTableState:
		var snap table.Snapshot
		if decodeInto(packet, &snap) {
			printTable(snap)
		}
	case network.MsgTypeSeatFilled:
		var e table.SeatFilled
		if decodeInto(packet, &e) {
			pterm.Info.Printfln("Table %d: %s took seat %d with %d (pot %d)", e.TableID, pterm.LightCyan(e.Player), e.Seat, e.Wager, e.Pot)
		}
	case network.MsgTypeGameStarted:
		var e table.GameStarted
		if decodeInto(packet, &e) {
			pterm.Success.Printfln("Table %d: bidding starts, pot %d", e.TableID, e.Pot)
		}
	case network.MsgTypeLandlordElected:
		var e table.LandlordElected
		if decodeInto(packet, &e) {
			pterm.Success.Printfln("Table %d: seat %d is landlord with bid %d, hole cards %s",
				e.TableID, e.LandlordIndex, e.HighestBid, formatCards(e.HoleCards[:]))
		}
	case network.MsgTypeCardsPlayed:
		var e table.CardsPlayed
		if decodeInto(packet, &e) {
			pterm.Info.Printfln("Table %d: seat %d played %s, seat %d to act", e.TableID, e.PlayerIndex, formatCards(e.Cards), e.NextTurn)
		}
	case network.MsgTypeGameEnded:
		var e table.GameEnded
		if decodeInto(packet, &e) {
			side := "peasants"
			if e.IsLandlordWin {
				side = "landlord"
			}
			pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
			pbox.WithTitle(pterm.LightGreen("|SETTLEMENT|")).WithTitleTopCenter().Println(
				pterm.Sprintfln("Table %d won by %s (seat %d, %s)", e.TableID, pterm.LightCyan(e.WinnerPlayer), e.WinnerIndex, side) +
					pterm.Sprintfln("%d paid to %s, fee %d", e.WinAmount, e.WinnerBeneficiary, e.ProtocolFee))
		}
	default:
		pterm.Debug.Printfln("RECV (ID: %d): %s", packet.MsgID, string(packet.Data))
	}
}

func decodeInto(packet *network.Packet, v interface{}) bool {
	if err := json.Unmarshal(packet.Data, v); err != nil {
		pterm.Warning.Printfln("Cannot decode message %d: %v", packet.MsgID, err)
		return false
	}
	return true
}

func formatCards(cs []cards.Card) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return pterm.BgGreen.Sprint(" " + strings.Join(parts, " ") + " ")
}

func printTable(s table.Snapshot) {
	data := pterm.TableData{{"Seat", "Player", "Beneficiary", ""}}
	for i, p := range s.Seats {
		mark := ""
		if s.Phase == "playing" && i == s.LandlordIndex {
			mark = pterm.LightYellow("landlord")
		}
		if (s.Phase == "bidding" || s.Phase == "playing") && i == s.CurrentTurn {
			mark = strings.TrimSpace(mark + " " + pterm.LightGreen("to act"))
		}
		name := p.String()
		if p.IsZero() {
			name = pterm.Gray("empty")
		}
		data = append(data, []string{pterm.Sprint(i), name, s.Beneficiaries[i].String(), mark})
	}

	pterm.DefaultSection.Printfln("Table %d  [%s]  pot %d", s.ID, s.Phase, s.Pot)
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}
	if s.LastPlay != nil {
		pterm.Info.Printfln("Last play: seat %d %s", s.LastPlay.PlayerIndex, formatCards(s.LastPlay.Cards))
	}
	if s.Settlement != nil {
		pterm.Info.Printfln("Settled: reward %d, fee %d", s.Settlement.RewardPool, s.Settlement.ProtocolFee)
	}
}

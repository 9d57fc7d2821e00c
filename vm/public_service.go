// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	log "github.com/inconshreveable/log15"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/controller"
	"github.com/dothype/hypevm/ledger"
	"github.com/dothype/hypevm/parser"
	"github.com/dothype/hypevm/registry"
	"github.com/dothype/hypevm/resolver"
)

type PublicService struct {
	vm *VM
}

type PingReply struct {
	Success bool `json:"success"`
}

func (svc *PublicService) Ping(_ *http.Request, _ *struct{}, reply *PingReply) (err error) {
	log.Info("ping")
	reply.Success = true
	return nil
}

type GenesisReply struct {
	Genesis *chain.Genesis `json:"genesis"`
}

func (svc *PublicService) Genesis(_ *http.Request, _ *struct{}, reply *GenesisReply) (err error) {
	reply.Genesis = svc.vm.Genesis()
	return nil
}

type ConfigReply struct {
	Controller common.Address     `json:"controller"`
	Registry   common.Address     `json:"registryController"`
	Config     *controller.Config `json:"config"`
	Time       uint64             `json:"time"`
}

func (svc *PublicService) Config(_ *http.Request, _ *struct{}, reply *ConfigReply) error {
	vm := svc.vm
	return vm.read(func(db database.Database, now uint64) error {
		cfg, err := vm.controller.Config(db)
		if err != nil {
			return err
		}
		rc, err := vm.registry.Controller(db)
		if err != nil {
			return err
		}
		reply.Controller = vm.controller.Address()
		reply.Registry = rc
		reply.Config = cfg
		reply.Time = now
		return nil
	})
}

type QuoteReply struct {
	Quote *controller.Quote `json:"quote"`
}

func (svc *PublicService) Quote(r *http.Request, args *NameDurationArgs, reply *QuoteReply) error {
	vm := svc.vm
	return vm.read(func(db database.Database, _ uint64) (err error) {
		reply.Quote, err = vm.controller.QuotePrice(r.Context(), db, args.Name, args.Duration)
		return err
	})
}

func (svc *PublicService) QuoteRenewal(r *http.Request, args *NameDurationArgs, reply *QuoteReply) error {
	vm := svc.vm
	return vm.read(func(db database.Database, _ uint64) (err error) {
		reply.Quote, err = vm.controller.QuoteRenewal(r.Context(), db, args.Name, args.Duration)
		return err
	})
}

type AuctionQuoteReply struct {
	Batch  uint64   `json:"batch"`
	Native *big.Int `json:"native"`
}

func (svc *PublicService) AuctionQuote(r *http.Request, args *NameDurationArgs, reply *AuctionQuoteReply) error {
	vm := svc.vm
	return vm.read(func(db database.Database, now uint64) (err error) {
		if reply.Batch, err = controller.DomainBatch(db, args.Name); err != nil {
			return err
		}
		reply.Native, err = vm.controller.AuctionTotalPrice(r.Context(), db, args.Name, args.Duration, now)
		return err
	})
}

type NonceReply struct {
	Nonce uint64 `json:"nonce"`
}

func (svc *PublicService) Nonce(_ *http.Request, args *AddressArgs, reply *NonceReply) error {
	return svc.vm.read(func(db database.Database, _ uint64) (err error) {
		reply.Nonce, err = controller.Nonce(db, args.Address)
		return err
	})
}

type ReservationReply struct {
	Reserved bool           `json:"reserved"`
	Address  common.Address `json:"address"`
}

func (svc *PublicService) Reservation(_ *http.Request, args *NameArgs, reply *ReservationReply) error {
	if err := parser.CheckName(args.Name); err != nil {
		return err
	}
	return svc.vm.read(func(db database.Database, _ uint64) (err error) {
		reply.Address, err = controller.Reservation(db, args.Name)
		reply.Reserved = reply.Address != (common.Address{})
		return err
	})
}

type HasClaimedReply struct {
	Claimed bool `json:"claimed"`
}

func (svc *PublicService) HasClaimed(_ *http.Request, args *AddressArgs, reply *HasClaimedReply) error {
	return svc.vm.read(func(db database.Database, _ uint64) (err error) {
		reply.Claimed, err = controller.HasClaimed(db, args.Address)
		return err
	})
}

type InfoReply struct {
	Name      string           `json:"name"`
	Node      common.Hash      `json:"node"`
	TokenID   *big.Int         `json:"tokenId"`
	State     string           `json:"state"`
	Available bool             `json:"available"`
	Record    *registry.Record `json:"record,omitempty"`
	Batch     uint64           `json:"batch,omitempty"`
}

func (svc *PublicService) Info(_ *http.Request, args *NameArgs, reply *InfoReply) error {
	if err := parser.CheckName(args.Name); err != nil {
		return err
	}
	vm := svc.vm
	return vm.read(func(db database.Database, now uint64) error {
		node := vm.registry.Node(args.Name)
		rec, has, err := registry.GetRecord(db, node)
		if err != nil {
			return err
		}
		s, err := vm.registry.State(db, node, now)
		if err != nil {
			return err
		}
		batch, err := controller.DomainBatch(db, args.Name)
		if err != nil {
			return err
		}
		reply.Name = args.Name
		reply.Node = node
		reply.TokenID = parser.TokenID(node)
		reply.State = s.String()
		reply.Available = s.Available()
		reply.Batch = batch
		if has {
			reply.Record = rec
		}
		return nil
	})
}

type AvailableReply struct {
	Available bool `json:"available"`
}

func (svc *PublicService) Available(_ *http.Request, args *NameArgs, reply *AvailableReply) error {
	if err := parser.CheckName(args.Name); err != nil {
		return err
	}
	vm := svc.vm
	return vm.read(func(db database.Database, now uint64) (err error) {
		reply.Available, err = vm.registry.Available(db, vm.registry.Node(args.Name), now)
		return err
	})
}

type BatchArgs struct {
	ID uint64 `json:"id"`
}

type AuctionStatusReply struct {
	Batch  *controller.Batch  `json:"batch"`
	Status *controller.Status `json:"status"`
}

func (svc *PublicService) AuctionStatus(_ *http.Request, args *BatchArgs, reply *AuctionStatusReply) error {
	return svc.vm.read(func(db database.Database, now uint64) error {
		b, err := controller.GetBatch(db, args.ID)
		if err != nil {
			return err
		}
		reply.Batch = b
		reply.Status = b.StatusAt(now)
		return nil
	})
}

type BatchDomainsReply struct {
	Names []string `json:"names"`
}

func (svc *PublicService) BatchDomains(_ *http.Request, args *BatchArgs, reply *BatchDomainsReply) error {
	return svc.vm.read(func(db database.Database, _ uint64) (err error) {
		reply.Names, err = controller.BatchDomains(db, args.ID)
		return err
	})
}

type BalanceReply struct {
	Balance *big.Int `json:"balance"`
	Names   uint64   `json:"names"`
}

func (svc *PublicService) Balance(_ *http.Request, args *AddressArgs, reply *BalanceReply) error {
	vm := svc.vm
	return vm.read(func(db database.Database, _ uint64) (err error) {
		if reply.Balance, err = ledger.GetBalance(db, args.Address); err != nil {
			return err
		}
		reply.Names, err = vm.registry.BalanceOf(db, args.Address)
		return err
	})
}

type ResolveArgs struct {
	// Path is "name.tld"
	Path string   `json:"path"`
	Keys []string `json:"keys,omitempty"`
}

type ResolveReply struct {
	Node        common.Hash       `json:"node"`
	Owner       common.Address    `json:"owner"`
	Version     uint64            `json:"version"`
	Address     common.Address    `json:"address"`
	Text        map[string]string `json:"text,omitempty"`
	Contenthash hexutil.Bytes     `json:"contenthash,omitempty"`
}

func (svc *PublicService) Resolve(_ *http.Request, args *ResolveArgs, reply *ResolveReply) error {
	name, tld, err := parser.ResolvePath(args.Path)
	if err != nil {
		return err
	}
	vm := svc.vm
	if tld != vm.registry.TLD() {
		return chain.ErrDomainMissing
	}
	return vm.read(func(db database.Database, now uint64) error {
		node := vm.registry.Node(name)
		s, err := vm.registry.State(db, node, now)
		if err != nil {
			return err
		}
		if s != registry.Active {
			return chain.ErrDomainExpired
		}
		if reply.Owner, err = vm.registry.OwnerOf(db, node); err != nil {
			return err
		}
		if reply.Version, err = resolver.Version(db, node); err != nil {
			return err
		}
		if reply.Address, err = resolver.Addr(db, node); err != nil {
			return err
		}
		if reply.Contenthash, err = resolver.Contenthash(db, node); err != nil {
			return err
		}
		for _, k := range args.Keys {
			v, err := resolver.Text(db, node, k)
			if err != nil {
				return err
			}
			if len(v) == 0 {
				continue
			}
			if reply.Text == nil {
				reply.Text = make(map[string]string)
			}
			reply.Text[k] = v
		}
		reply.Node = node
		return nil
	})
}

type RecentActivityReply struct {
	Activity []*chain.Activity `json:"activity"`
}

func (svc *PublicService) RecentActivity(_ *http.Request, _ *struct{}, reply *RecentActivityReply) error {
	reply.Activity = svc.vm.RecentActivity()
	return nil
}

type IssueCallArgs struct {
	Call      hexutil.Bytes `json:"call"`
	Signature hexutil.Bytes `json:"signature"`
}

// IssueCallReply reports a failed call in Kind and Error instead of an RPC
// error so callers can tell failure classes apart.
type IssueCallReply struct {
	CallID   ids.ID            `json:"callId"`
	Success  bool              `json:"success"`
	Output   json.RawMessage   `json:"output,omitempty"`
	Activity []*chain.Activity `json:"activity,omitempty"`
	Kind     chain.Kind        `json:"kind,omitempty"`
	Error    string            `json:"error,omitempty"`
}

func (svc *PublicService) IssueCall(r *http.Request, args *IssueCallArgs, reply *IssueCallReply) error {
	res, err := svc.vm.Execute(r.Context(), args.Call, args.Signature)
	if res != nil {
		reply.CallID = res.CallID
		reply.Output = res.Output
		reply.Activity = res.Activity
	}
	if err != nil {
		reply.Kind = Classify(err)
		reply.Error = err.Error()
		return nil
	}
	reply.Success = true
	return nil
}

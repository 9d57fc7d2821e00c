// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package client implements "hypevm" client SDK.
package client

import (
	"math/big"
	"time"

	"github.com/ava-labs/avalanchego/utils/rpc"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/controller"
	"github.com/dothype/hypevm/vm"
)

// Client defines hypevm client operations.
type Client interface {
	// Pings the VM.
	Ping() (bool, error)

	// Returns the VM genesis.
	Genesis() (*chain.Genesis, error)
	// Returns the administrative settings and the VM time.
	Config() (*vm.ConfigReply, error)

	// Prices a registration of [name] for [duration] seconds.
	Quote(name string, duration uint64) (*controller.Quote, error)
	// Prices a renewal of [name] for [duration] seconds.
	QuoteRenewal(name string, duration uint64) (*controller.Quote, error)
	// Prices buying [name] from its auction batch right now.
	AuctionQuote(name string, duration uint64) (batch uint64, native *big.Int, err error)

	// Returns the nonce the next registration signature for [owner] embeds.
	Nonce(owner common.Address) (uint64, error)
	// Returns the address [name] is reserved for, if any.
	Reservation(name string) (common.Address, error)
	// Returns true if [addr] already claimed its merkle allowance.
	HasClaimed(addr common.Address) (bool, error)

	// Returns the record and lifecycle state of [name].
	Info(name string) (*vm.InfoReply, error)
	// Returns true if [name] can be registered.
	Available(name string) (bool, error)
	// Returns an auction batch and its status at the VM time.
	AuctionStatus(id uint64) (*controller.Batch, *controller.Status, error)
	// Lists the names a batch was created with.
	BatchDomains(id uint64) ([]string, error)

	// Balance returns the native balance and the number of names held.
	Balance(addr common.Address) (*big.Int, uint64, error)
	// Resolve returns the records of "name.tld" along with the text
	// entries under [keys].
	Resolve(path string, keys ...string) (*vm.ResolveReply, error)
	// Returns the most recent committed activity, newest first.
	RecentActivity() ([]*chain.Activity, error)

	// Issues a signed call envelope and returns its outcome.
	IssueCall(call []byte, sig []byte) (*vm.IssueCallReply, error)

	// Forces a pass of the seen-call pruner over the private endpoint.
	PruneCalls() (int, error)
}

// New creates a new client object.
func New(uri string, reqTimeout time.Duration) Client {
	req := rpc.NewEndpointRequester(
		uri,
		vm.PublicEndpoint,
		vm.Name,
		reqTimeout,
	)
	preq := rpc.NewEndpointRequester(
		uri,
		vm.PrivateEndpoint,
		vm.Name,
		reqTimeout,
	)
	return &client{req: req, preq: preq}
}

type client struct {
	req  rpc.EndpointRequester
	preq rpc.EndpointRequester
}

func (cli *client) Ping() (bool, error) {
	resp := new(vm.PingReply)
	err := cli.req.SendRequest(
		"ping",
		nil,
		resp,
	)
	if err != nil {
		return false, err
	}
	return resp.Success, nil
}

func (cli *client) Genesis() (*chain.Genesis, error) {
	resp := new(vm.GenesisReply)
	err := cli.req.SendRequest(
		"genesis",
		nil,
		resp,
	)
	return resp.Genesis, err
}

func (cli *client) Config() (*vm.ConfigReply, error) {
	resp := new(vm.ConfigReply)
	if err := cli.req.SendRequest(
		"config",
		nil,
		resp,
	); err != nil {
		color.Red("failed to get config %v", err)
		return nil, err
	}
	return resp, nil
}

func (cli *client) Quote(name string, duration uint64) (*controller.Quote, error) {
	resp := new(vm.QuoteReply)
	if err := cli.req.SendRequest(
		"quote",
		&vm.NameDurationArgs{Name: name, Duration: duration},
		resp,
	); err != nil {
		return nil, err
	}
	return resp.Quote, nil
}

func (cli *client) QuoteRenewal(name string, duration uint64) (*controller.Quote, error) {
	resp := new(vm.QuoteReply)
	if err := cli.req.SendRequest(
		"quoteRenewal",
		&vm.NameDurationArgs{Name: name, Duration: duration},
		resp,
	); err != nil {
		return nil, err
	}
	return resp.Quote, nil
}

func (cli *client) AuctionQuote(name string, duration uint64) (uint64, *big.Int, error) {
	resp := new(vm.AuctionQuoteReply)
	if err := cli.req.SendRequest(
		"auctionQuote",
		&vm.NameDurationArgs{Name: name, Duration: duration},
		resp,
	); err != nil {
		return 0, nil, err
	}
	return resp.Batch, resp.Native, nil
}

func (cli *client) Nonce(owner common.Address) (uint64, error) {
	resp := new(vm.NonceReply)
	if err := cli.req.SendRequest(
		"nonce",
		&vm.AddressArgs{Address: owner},
		resp,
	); err != nil {
		return 0, err
	}
	return resp.Nonce, nil
}

func (cli *client) Reservation(name string) (common.Address, error) {
	resp := new(vm.ReservationReply)
	if err := cli.req.SendRequest(
		"reservation",
		&vm.NameArgs{Name: name},
		resp,
	); err != nil {
		return common.Address{}, err
	}
	return resp.Address, nil
}

func (cli *client) HasClaimed(addr common.Address) (bool, error) {
	resp := new(vm.HasClaimedReply)
	if err := cli.req.SendRequest(
		"hasClaimed",
		&vm.AddressArgs{Address: addr},
		resp,
	); err != nil {
		return false, err
	}
	return resp.Claimed, nil
}

func (cli *client) Info(name string) (*vm.InfoReply, error) {
	resp := new(vm.InfoReply)
	if err := cli.req.SendRequest(
		"info",
		&vm.NameArgs{Name: name},
		resp,
	); err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *client) Available(name string) (bool, error) {
	resp := new(vm.AvailableReply)
	if err := cli.req.SendRequest(
		"available",
		&vm.NameArgs{Name: name},
		resp,
	); err != nil {
		return false, err
	}
	return resp.Available, nil
}

func (cli *client) AuctionStatus(id uint64) (*controller.Batch, *controller.Status, error) {
	resp := new(vm.AuctionStatusReply)
	if err := cli.req.SendRequest(
		"auctionStatus",
		&vm.BatchArgs{ID: id},
		resp,
	); err != nil {
		return nil, nil, err
	}
	return resp.Batch, resp.Status, nil
}

func (cli *client) BatchDomains(id uint64) ([]string, error) {
	resp := new(vm.BatchDomainsReply)
	if err := cli.req.SendRequest(
		"batchDomains",
		&vm.BatchArgs{ID: id},
		resp,
	); err != nil {
		return nil, err
	}
	return resp.Names, nil
}

func (cli *client) Balance(addr common.Address) (*big.Int, uint64, error) {
	resp := new(vm.BalanceReply)
	if err := cli.req.SendRequest(
		"balance",
		&vm.AddressArgs{Address: addr},
		resp,
	); err != nil {
		return nil, 0, err
	}
	return resp.Balance, resp.Names, nil
}

func (cli *client) Resolve(path string, keys ...string) (*vm.ResolveReply, error) {
	resp := new(vm.ResolveReply)
	if err := cli.req.SendRequest(
		"resolve",
		&vm.ResolveArgs{Path: path, Keys: keys},
		resp,
	); err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *client) RecentActivity() ([]*chain.Activity, error) {
	resp := new(vm.RecentActivityReply)
	if err := cli.req.SendRequest(
		"recentActivity",
		nil,
		resp,
	); err != nil {
		return nil, err
	}
	return resp.Activity, nil
}

func (cli *client) IssueCall(call []byte, sig []byte) (*vm.IssueCallReply, error) {
	resp := new(vm.IssueCallReply)
	if err := cli.req.SendRequest(
		"issueCall",
		&vm.IssueCallArgs{Call: call, Signature: sig},
		resp,
	); err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *client) PruneCalls() (int, error) {
	resp := new(vm.PruneCallsReply)
	err := cli.preq.SendRequest(
		"pruneCalls",
		nil,
		resp,
	)
	return resp.Removed, err
}

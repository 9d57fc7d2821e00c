// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// integration implements the integration tests.
package integration_test

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"flag"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fatih/color"
	log "github.com/inconshreveable/log15"
	ginkgo "github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/client"
	"github.com/dothype/hypevm/merkle"
	"github.com/dothype/hypevm/tdata"
	"github.com/dothype/hypevm/vm"
)

func TestIntegration(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "hypevm integration test suites")
}

var requestTimeout time.Duration

func init() {
	flag.DurationVar(
		&requestTimeout,
		"request-timeout",
		30*time.Second,
		"timeout for call issuance",
	)
}

var (
	ownerPriv  *ecdsa.PrivateKey
	owner      ecommon.Address
	signerPriv *ecdsa.PrivateKey
	userPriv   *ecdsa.PrivateKey
	user       ecommon.Address
	claimPriv  *ecdsa.PrivateKey
	claimer    ecommon.Address

	genesis    *chain.Genesis
	instance   *vm.VM
	httpServer *httptest.Server
	cli        client.Client
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func genKey() (*ecdsa.PrivateKey, ecommon.Address) {
	priv, err := crypto.GenerateKey()
	gomega.Ω(err).Should(gomega.BeNil())
	addr := crypto.PubkeyToAddress(priv.PublicKey)
	log.Debug("generated key", "addr", addr, "priv", hex.EncodeToString(crypto.FromECDSA(priv)))
	return priv, addr
}

var _ = ginkgo.BeforeSuite(func() {
	ownerPriv, owner = genKey()
	var signer ecommon.Address
	signerPriv, signer = genKey()
	userPriv, user = genKey()
	claimPriv, claimer = genKey()

	genesis = chain.DefaultGenesis()
	genesis.Owner = owner
	genesis.Signer = signer
	genesis.Allocations = []*chain.Allocation{
		{Address: owner, Balance: (*math.HexOrDecimal256)(ether(10_000))},
		{Address: user, Balance: (*math.HexOrDecimal256)(ether(10_000))},
		{Address: claimer, Balance: (*math.HexOrDecimal256)(ether(10_000))},
	}

	var cfg vm.Config
	cfg.SetDefaults()
	var err error
	instance, err = vm.New(cfg, genesis, memdb.New(), vm.RealClock{})
	gomega.Ω(err).Should(gomega.BeNil())
	instance.Start()

	hd, err := instance.CreateHandlers()
	gomega.Ω(err).Should(gomega.BeNil())
	mux := http.NewServeMux()
	for endpoint, h := range hd {
		mux.Handle(endpoint, h)
	}
	httpServer = httptest.NewServer(mux)
	cli = client.New(httpServer.URL, requestTimeout)

	// Verify genesis allocations loaded correctly
	g, err := cli.Genesis()
	gomega.Ω(err).Should(gomega.BeNil())
	for _, alloc := range g.Allocations {
		bal, _, err := cli.Balance(alloc.Address)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(bal).Should(gomega.Equal((*big.Int)(alloc.Balance)))
	}
	color.Blue("started hypevm at %s", httpServer.URL)
})

var _ = ginkgo.AfterSuite(func() {
	httpServer.Close()
	gomega.Ω(instance.Shutdown()).Should(gomega.BeNil())
})

var _ = ginkgo.Describe("[Ping]", func() {
	ginkgo.It("can ping", func() {
		ok, err := cli.Ping()
		gomega.Ω(ok).Should(gomega.BeTrue())
		gomega.Ω(err).Should(gomega.BeNil())
	})

	ginkgo.It("can prune seen calls", func() {
		removed, err := cli.PruneCalls()
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(removed).Should(gomega.BeNumerically(">=", 0))
	})
})

var _ = ginkgo.Describe("Registration", ginkgo.Ordered, func() {
	ginkgo.It("ensure no activity yet", func() {
		activity, err := cli.RecentActivity()
		gomega.Ω(err).To(gomega.BeNil())
		gomega.Ω(activity).To(gomega.BeEmpty())
	})

	ginkgo.It("quotes by tier", func() {
		q, err := cli.Quote("abc", chain.Year)
		gomega.Ω(err).To(gomega.BeNil())
		gomega.Ω(q.USD).To(gomega.Equal(ether(100)))
		gomega.Ω(q.Native).To(gomega.Equal(ether(100)))

		_, err = cli.Quote("", chain.Year)
		gomega.Ω(err).NotTo(gomega.BeNil())
	})

	ginkgo.It("registers with a signer approval", func() {
		cfg, err := cli.Config()
		gomega.Ω(err).To(gomega.BeNil())
		nonce, err := cli.Nonce(user)
		gomega.Ω(err).To(gomega.BeNil())

		r := &tdata.Registration{
			Name:     "abc",
			Owner:    user,
			Duration: chain.Year,
			MaxPrice: ether(150),
			Deadline: cfg.Time + 600,
		}
		sig, err := client.SignRegistration(genesis, tdata.Register, r, nonce, signerPriv)
		gomega.Ω(err).To(gomega.BeNil())

		reply, err := client.SignIssueCall(
			cli,
			vm.RegisterWithSignature,
			&vm.SignedRegistrationArgs{Registration: r, Signature: sig},
			userPriv,
			client.WithValue(ether(200)),
			client.WithInfo("abc"),
		)
		gomega.Ω(err).To(gomega.BeNil())
		gomega.Ω(reply.Success).To(gomega.BeTrue())

		info, err := cli.Info("abc")
		gomega.Ω(err).To(gomega.BeNil())
		gomega.Ω(info.State).To(gomega.Equal("active"))
		gomega.Ω(info.Record.Owner).To(gomega.Equal(user))

		bal, names, err := cli.Balance(user)
		gomega.Ω(err).To(gomega.BeNil())
		gomega.Ω(bal).To(gomega.Equal(ether(9_900)))
		gomega.Ω(names).To(gomega.Equal(uint64(1)))
	})

	ginkgo.It("reports the failure class of a rejected call", func() {
		_, err := client.SignIssueCall(
			cli,
			vm.Renew,
			&vm.NameDurationArgs{Name: "abc", Duration: chain.Year},
			userPriv,
		)
		var cerr *client.CallError
		gomega.Ω(errors.As(err, &cerr)).To(gomega.BeTrue())
		gomega.Ω(cerr.Kind).To(gomega.Equal(chain.KindEconomic))
		gomega.Ω(errors.Is(err, client.ErrCallFailed)).To(gomega.BeTrue())
	})

	ginkgo.It("sets and resolves records", func() {
		_, err := client.SignIssueCall(
			cli,
			vm.SetText,
			&vm.SetTextArgs{Name: "abc", Key: "url", Value: "https://abc.example"},
			userPriv,
		)
		gomega.Ω(err).To(gomega.BeNil())

		rec, err := cli.Resolve("abc.hype", "url")
		gomega.Ω(err).To(gomega.BeNil())
		gomega.Ω(rec.Owner).To(gomega.Equal(user))
		gomega.Ω(rec.Text).To(gomega.HaveKeyWithValue("url", "https://abc.example"))
	})

	ginkgo.It("claims through the merkle allowlist", func() {
		tree, err := merkle.FromAddresses([]ecommon.Address{claimer, owner})
		gomega.Ω(err).To(gomega.BeNil())
		_, err = client.SignIssueCall(cli, vm.SetMerkleRoot, &vm.MerkleRootArgs{Root: tree.Root()}, ownerPriv)
		gomega.Ω(err).To(gomega.BeNil())

		proof, err := tree.Proof(merkle.Leaf(claimer))
		gomega.Ω(err).To(gomega.BeNil())
		_, err = client.SignIssueCall(
			cli,
			vm.RegisterWithMerkleProof,
			&vm.MerkleRegistrationArgs{Name: "claimed", Duration: chain.Year, Proof: proof},
			claimPriv,
			client.WithValue(ether(10)),
		)
		gomega.Ω(err).To(gomega.BeNil())

		claimed, err := cli.HasClaimed(claimer)
		gomega.Ω(err).To(gomega.BeNil())
		gomega.Ω(claimed).To(gomega.BeTrue())
	})

	ginkgo.It("sells names by auction", func() {
		cfg, err := cli.Config()
		gomega.Ω(err).To(gomega.BeNil())

		// Starting in the future holds the price at the start price.
		reply, err := client.SignIssueCall(cli, vm.CreateAuctionBatch, &vm.AuctionBatchArgs{
			Names:      []string{"gold"},
			StartPrice: (*math.HexOrDecimal256)(ether(60)),
			EndPrice:   (*math.HexOrDecimal256)(ether(50)),
			Duration:   3600,
			StartTime:  cfg.Time + 3600,
		}, ownerPriv)
		gomega.Ω(err).To(gomega.BeNil())
		gomega.Ω(string(reply.Output)).To(gomega.Equal("1"))

		names, err := cli.BatchDomains(1)
		gomega.Ω(err).To(gomega.BeNil())
		gomega.Ω(names).To(gomega.Equal([]string{"gold"}))

		batch, native, err := cli.AuctionQuote("gold", chain.Year)
		gomega.Ω(err).To(gomega.BeNil())
		gomega.Ω(batch).To(gomega.Equal(uint64(1)))
		// $25 tier price plus the $60 premium
		gomega.Ω(native).To(gomega.Equal(ether(85)))

		_, err = client.SignIssueCall(
			cli,
			vm.RegisterAuction,
			&vm.AuctionRegistrationArgs{
				Name:     "gold",
				Duration: chain.Year,
				MaxPrice: (*math.HexOrDecimal256)(ether(90)),
			},
			ownerPriv,
			client.WithValue(ether(85)),
		)
		gomega.Ω(err).To(gomega.BeNil())
		available, err := cli.Available("gold")
		gomega.Ω(err).To(gomega.BeNil())
		gomega.Ω(available).To(gomega.BeFalse())
	})

	ginkgo.It("records activity", func() {
		activity, err := cli.RecentActivity()
		gomega.Ω(err).To(gomega.BeNil())
		gomega.Ω(activity).NotTo(gomega.BeEmpty())
		gomega.Ω(activity[0].Typ).To(gomega.Equal(chain.AuctionPurchased))
	})
})

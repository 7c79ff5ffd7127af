// Package seeder generates realistic auctions for demos and load testing.
package seeder

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/gavelworks/gavel-stack/cli/internal/client"
)

// GenerateAuction produces one plausible auction listing. Auction ends are
// spread between one and thirty days out.
func GenerateAuction() *client.CreateAuctionRequest {
	car := gofakeit.Car()

	return &client.CreateAuctionRequest{
		Make:         car.Brand,
		Model:        car.Model,
		Year:         gofakeit.Number(1995, time.Now().Year()),
		Color:        gofakeit.Color(),
		Mileage:      gofakeit.Number(0, 200000),
		ReservePrice: gofakeit.Number(1000, 90000),
		AuctionEnd:   time.Now().Add(time.Duration(1+rand.Intn(30)) * 24 * time.Hour),
	}
}

// Run creates count auctions through the write-side API.
func Run(auctions *client.AuctionClient, token string, count int, progress func(i int, req *client.CreateAuctionRequest)) error {
	for i := 0; i < count; i++ {
		req := GenerateAuction()
		if _, err := auctions.Create(token, req); err != nil {
			return fmt.Errorf("seed auction %d/%d: %w", i+1, count, err)
		}
		if progress != nil {
			progress(i+1, req)
		}
	}
	return nil
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Simulator that seeds a garage-manager instance with a service catalog and
// parts inventory, then fires booking traffic at it. Useful for demoing the
// quote engine and for watching partial deduction warnings appear as stock
// runs out.

type serviceDraft struct {
	Label                   string  `json:"label"`
	SubLabel                string  `json:"sub_label"`
	Duration                string  `json:"duration"`
	FixedPrice              float64 `json:"fixed_price"`
	LabourRatePerHour       float64 `json:"labour_rate_per_hour"`
	StandardDiscountPercent float64 `json:"standard_discount_percent"`
	PremiumDiscountPercent  float64 `json:"premium_discount_percent"`
}

type part struct {
	PartNumber       string  `json:"part_number"`
	Name             string  `json:"name"`
	Supplier         string  `json:"supplier"`
	UnitCost         float64 `json:"unit_cost"`
	ProfitPercent    float64 `json:"profit_percent"`
	QuantityOnHand   int     `json:"quantity_on_hand"`
	ReorderThreshold int     `json:"reorder_threshold"`
}

type lineItem struct {
	PartNumber string  `json:"part_number"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
}

type bookingRequest struct {
	Car struct {
		Registration string `json:"registration"`
		Make         string `json:"make"`
		Model        string `json:"model"`
		Year         int    `json:"year"`
	} `json:"car"`
	Customer struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"customer"`
	ServiceIDs []string   `json:"service_ids"`
	LineItems  []lineItem `json:"line_items"`
	Date       string     `json:"date"`
	Time       string     `json:"time"`
}

var seedServices = []serviceDraft{
	{Label: "Interim Service", SubLabel: "Oil and filter change", Duration: "2 hours - Servicing", FixedPrice: 89, StandardDiscountPercent: 5, PremiumDiscountPercent: 15},
	{Label: "Full Service", SubLabel: "Comprehensive inspection", Duration: "4 hours - Servicing", FixedPrice: 169, StandardDiscountPercent: 10, PremiumDiscountPercent: 20},
	{Label: "Front Brake Pads", SubLabel: "Brake pad replacement", Duration: "1.5 hours - Repairs", LabourRatePerHour: 55, StandardDiscountPercent: 0, PremiumDiscountPercent: 10},
	{Label: "Clutch Replacement", SubLabel: "Clutch kit fitted", Duration: "5 hours - Repairs", LabourRatePerHour: 60, StandardDiscountPercent: 0, PremiumDiscountPercent: 5},
	{Label: "Tyre Fitting", SubLabel: "Per tyre, balanced", Duration: "0.5 hours - Tyres", FixedPrice: 15, StandardDiscountPercent: 0, PremiumDiscountPercent: 0},
	{Label: "MOT", SubLabel: "Ministry inspection", Duration: "1 hours - Inspection", FixedPrice: 54.85, StandardDiscountPercent: 0, PremiumDiscountPercent: 0},
}

var seedParts = []part{
	{PartNumber: "BP-2041", Name: "Brake Pad Set", Supplier: "Euro Car Parts", UnitCost: 22.50, ProfitPercent: 40, QuantityOnHand: 12, ReorderThreshold: 4},
	{PartNumber: "OF-1100", Name: "Oil Filter", Supplier: "GSF", UnitCost: 4.20, ProfitPercent: 60, QuantityOnHand: 30, ReorderThreshold: 10},
	{PartNumber: "TY-1956", Name: "195/65 R15 Tyre", Supplier: "Kwik Fit", UnitCost: 38.00, ProfitPercent: 30, QuantityOnHand: 8, ReorderThreshold: 4},
	{PartNumber: "SP-0090", Name: "Spark Plug", Supplier: "GSF", UnitCost: 3.10, ProfitPercent: 80, QuantityOnHand: 40, ReorderThreshold: 12},
	{PartNumber: "CL-7731", Name: "Clutch Kit", Supplier: "Euro Car Parts", UnitCost: 145.00, ProfitPercent: 25, QuantityOnHand: 2, ReorderThreshold: 1},
}

var registrations = []string{"LB07 SEO", "WR17 XKD", "KT66 APF", "GY19 ZZT", "BD51 SMR"}

var authToken string

func apiURL() string {
	if url := os.Getenv("API_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

func doJSON(method, path string, payload interface{}) ([]byte, int, error) {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return nil, 0, err
		}
	}

	req, err := http.NewRequest(method, apiURL()+path, &body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	return data, resp.StatusCode, err
}

func login() error {
	creds := map[string]string{
		"username":   "simulator",
		"email":      "simulator@garage.test",
		"password":   "simulator-pass-1",
		"first_name": "Sim",
		"last_name":  "Ulator",
		"role":       "receptionist",
	}

	// Registration may already exist from a previous run; fall through to login.
	if _, status, err := doJSON(http.MethodPost, "/api/auth/register", creds); err == nil && status == http.StatusCreated {
		log.Info("Registered simulator staff account")
	}

	data, status, err := doJSON(http.MethodPost, "/api/auth/login", map[string]string{
		"username": creds["username"],
		"password": creds["password"],
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("login failed with status %d", status)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &loginResp); err != nil {
		return err
	}
	authToken = loginResp.Token
	return nil
}

func seedCatalog() ([]string, error) {
	var ids []string
	for _, draft := range seedServices {
		data, status, err := doJSON(http.MethodPost, "/api/services", draft)
		if err != nil {
			return nil, err
		}
		if status != http.StatusCreated {
			return nil, fmt.Errorf("service seed failed with status %d", status)
		}

		var created struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(data, &created); err != nil {
			return nil, err
		}
		ids = append(ids, created.ID)
	}

	for _, p := range seedParts {
		if _, status, err := doJSON(http.MethodPost, "/api/parts", p); err != nil || status != http.StatusCreated {
			return nil, fmt.Errorf("part seed failed (status %d): %v", status, err)
		}
	}
	return ids, nil
}

func randomBooking(serviceIDs []string) bookingRequest {
	var req bookingRequest
	req.Car.Registration = registrations[rand.Intn(len(registrations))]
	req.Car.Make = "Ford"
	req.Car.Model = "Focus"
	req.Car.Year = 2015 + rand.Intn(9)
	req.Customer.Name = fmt.Sprintf("Customer %d", rand.Intn(1000))
	req.Customer.Email = fmt.Sprintf("customer%d@example.com", rand.Intn(1000))
	req.Date = time.Now().AddDate(0, 0, 1+rand.Intn(14)).Format("2006-01-02")
	req.Time = fmt.Sprintf("%02d:00", 9+rand.Intn(8))

	count := 1 + rand.Intn(2)
	for i := 0; i < count; i++ {
		req.ServiceIDs = append(req.ServiceIDs, serviceIDs[rand.Intn(len(serviceIDs))])
	}

	if rand.Intn(2) == 0 {
		p := seedParts[rand.Intn(len(seedParts))]
		req.LineItems = append(req.LineItems, lineItem{
			PartNumber: p.PartNumber,
			Quantity:   1 + rand.Intn(2),
			UnitPrice:  p.UnitCost * (1 + p.ProfitPercent/100),
		})
	}
	return req
}

func main() {
	bookingsToCreate := 20
	if n, err := strconv.Atoi(os.Getenv("SIM_BOOKINGS")); err == nil && n > 0 {
		bookingsToCreate = n
	}

	if err := login(); err != nil {
		log.WithError(err).Fatal("Simulator login failed")
	}

	serviceIDs, err := seedCatalog()
	if err != nil {
		log.WithError(err).Fatal("Failed to seed catalog")
	}
	log.WithField("services", len(serviceIDs)).Info("Seeded catalog and parts")

	for i := 0; i < bookingsToCreate; i++ {
		data, status, err := doJSON(http.MethodPost, "/api/bookings", randomBooking(serviceIDs))
		if err != nil {
			log.WithError(err).Error("Booking request failed")
			continue
		}
		if status != http.StatusCreated {
			log.WithField("status", status).Warn("Booking rejected")
			continue
		}

		var result struct {
			Reference string `json:"reference"`
			Quote     struct {
				Total float64 `json:"total"`
			} `json:"quote"`
			Warnings []struct {
				PartNumber string `json:"part_number"`
				Reason     string `json:"reason"`
			} `json:"warnings"`
		}
		if err := json.Unmarshal(data, &result); err != nil {
			log.WithError(err).Error("Failed to parse booking result")
			continue
		}

		entry := log.WithFields(log.Fields{
			"reference": result.Reference,
			"total":     result.Quote.Total,
		})
		if len(result.Warnings) > 0 {
			entry.WithField("warnings", len(result.Warnings)).Warn("Booking created with deduction warnings")
		} else {
			entry.Info("Booking created")
		}

		time.Sleep(200 * time.Millisecond)
	}
}

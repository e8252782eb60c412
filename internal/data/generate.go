package data

import (
	"math/rand"
	"os"
	"path/filepath"
)

var categories = []string{"Alimentação", "Transporte", "Taxi", "Pedágio", "Hospedagem"}

// ExpenseSchema is the attribute layout produced by GenerateExpenses.
func ExpenseSchema() []Attribute {
	return []Attribute{
		NumericAttribute("amount"),
		NumericAttribute("interval_days"),
		NumericAttribute("weekday"),
		NumericAttribute("month"),
		NumericAttribute("same_approver"),
		NumericAttribute("requester_is_traveller"),
		NumericAttribute("round_amount"),
		NumericAttribute("multiple_of_5"),
		NominalAttribute("category", categories...),
		NominalAttribute("fraud", "legit", "fraud"),
	}
}

// GenerateExpenses builds a synthetic, imbalanced expense dataset. The same
// seed yields the same rows. Roughly fraudRate of the rows are labeled
// fraud, more often when several red flags coincide.
func GenerateExpenses(n int, fraudRate float64, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed))
	ds, _ := New("expenses", ExpenseSchema(), 9)
	ds.Instances = make([]Instance, 0, n)

	for i := 0; i < n; i++ {
		requester := rng.Intn(5000)
		traveller := requester
		if rng.Float64() < 0.2 {
			traveller = rng.Intn(5000)
		}
		sameApprover := rng.Float64() < 0.03

		reqOffset := rng.Intn(300)
		travelOffset := reqOffset + rng.Intn(30)
		if rng.Float64() < 0.02 {
			travelOffset = reqOffset - rng.Intn(5) - 1
		}
		interval := float64(travelOffset - reqOffset)

		cat := rng.Intn(len(categories))
		amount := rng.Float64()*450 + 10
		round := rng.Float64() < 0.25
		multiple5 := rng.Float64() < 0.25
		if round {
			amount = float64(int(amount))
		}
		if multiple5 {
			amount = float64(5 * int(amount/5))
		}

		score := 0.0
		flags := 0
		if sameApprover {
			score += 0.35
			flags++
		}
		if round {
			score += 0.1
			flags++
		}
		if multiple5 {
			score += 0.1
			flags++
		}
		if interval < 0 {
			score += 0.3
			flags++
		}
		if categories[cat] == "Taxi" && amount > 200 {
			score += 0.2
			flags++
		}
		fraud := 0.0
		if flags >= 3 || interval < 0 {
			fraud = 1
		} else if rng.Float64() < fraudRate*(1+4*score) {
			fraud = 1
		}

		ds.Instances = append(ds.Instances, NewInstance(
			amount,
			interval,
			float64(reqOffset%7),
			float64(1+(reqOffset/30)%12),
			boolToFloat(sameApprover),
			boolToFloat(requester == traveller),
			boolToFloat(amount == float64(int(amount))),
			boolToFloat(int(amount)%5 == 0),
			float64(cat),
			fraud,
		))
	}
	return ds
}

// WriteCSVFile writes ds to path, creating parent directories.
func WriteCSVFile(path string, ds *Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteCSV(f, ds)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

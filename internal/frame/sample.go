package frame

// Sample returns the built-in product sales dataset used when no file is given.
func Sample() *Frame {
	return New("sample", []string{"Product", "Sales", "Price", "Category"}, [][]string{
		{"Laptop", "120", "5000", "Electronics"},
		{"Phone", "250", "3000", "Electronics"},
		{"Tablet", "180", "2000", "Electronics"},
		{"Watch", "300", "1500", "Wearable"},
		{"Headphones", "450", "500", "Audio"},
		{"Console", "90", "2500", "Gaming"},
		{"Monitor", "150", "1800", "Electronics"},
	})
}

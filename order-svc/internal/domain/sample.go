package domain

import "time"

const (
	SampleUserID = "user-123"
	imageBase    = "https://images.pexels.com/photos/"
	imageQuery   = "?auto=compress&cs=tinysrgb&w=400"
)

func pexels(path string) string {
	return imageBase + path + imageQuery
}

// SampleMenu is served when no catalog backend is reachable.
func SampleMenu() []MenuItem {
	return []MenuItem{
		{
			ID: "1", Name: "Margherita Pizza", Category: "pizza",
			Description: "Classic pizza with tomato sauce, mozzarella cheese, and fresh basil",
			Price:       299, ImageURL: pexels("315755/pexels-photo-315755.jpeg"),
			Availability: true, IsVeg: true, Rating: 4.5, IsPopular: true,
		},
		{
			ID: "2", Name: "Chicken Burger", Category: "burgers",
			Description: "Juicy grilled chicken patty with lettuce, tomato, and special sauce",
			Price:       249, ImageURL: pexels("1556909/pexels-photo-1556909.jpeg"),
			Availability: true, IsVeg: false, Rating: 4.3,
		},
		{
			ID: "3", Name: "Caesar Salad", Category: "starters",
			Description: "Fresh romaine lettuce with parmesan cheese, croutons, and caesar dressing",
			Price:       199, ImageURL: pexels("461198/pexels-photo-461198.jpeg"),
			Availability: true, IsVeg: true, Rating: 4.2,
		},
		{
			ID: "4", Name: "Cold Coffee", Category: "drinks",
			Description: "Refreshing cold brew coffee with milk and ice",
			Price:       149, ImageURL: pexels("302899/pexels-photo-302899.jpeg"),
			Availability: true, IsVeg: true, Rating: 4.1, IsPopular: true,
		},
		{
			ID: "5", Name: "Chocolate Cake", Category: "desserts",
			Description: "Rich and moist chocolate cake with chocolate frosting",
			Price:       179, ImageURL: pexels("291528/pexels-photo-291528.jpeg"),
			Availability: true, IsVeg: true, Rating: 4.7, IsPopular: true,
		},
		{
			ID: "6", Name: "Pepperoni Pizza", Category: "pizza",
			Description: "Delicious pizza topped with pepperoni and mozzarella cheese",
			Price:       349, ImageURL: pexels("1566837/pexels-photo-1566837.jpeg"),
			Availability: true, IsVeg: false, Rating: 4.6, IsPopular: true,
		},
	}
}

func sampleLine(item MenuItem, qty int, at time.Time) CartLine {
	return CartLine{MenuItem: item, Quantity: qty, AddedAt: at}
}

func billFor(subtotal, fee int64) BillBreakdown {
	tax := (subtotal*5 + 50) / 100
	return BillBreakdown{Subtotal: subtotal, Tax: tax, DeliveryFee: fee, Total: subtotal + tax + fee}
}

// SampleOrders is the demo order history of SampleUserID relative to now.
func SampleOrders(now time.Time) []Order {
	menu := SampleMenu()
	yesterday := now.Add(-24 * time.Hour)
	threeDaysAgo := now.Add(-72 * time.Hour)

	first := billFor(747, 40)
	second := billFor(249, 0)
	third := billFor(557, 0)

	return []Order{
		{
			ID: "ORDER-001", UserID: SampleUserID, Mode: ModeDelivery, Status: StatusPreparing,
			Items: []CartLine{sampleLine(menu[0], 2, now), sampleLine(menu[3], 1, now)},
			OrderDetails: OrderDetail{
				Mode: ModeDelivery, Phone: "+91 9876543210", PaymentMethod: PaymentCOD,
				Delivery: &DeliveryDetail{Street: "123 Main St", City: "City", Pincode: "12345"},
			},
			Bill: first, Total: first.Total, CreatedAt: now,
		},
		{
			ID: "ORDER-002", UserID: SampleUserID, Mode: ModeTakeaway, Status: StatusCompleted,
			Items: []CartLine{sampleLine(menu[1], 1, yesterday)},
			OrderDetails: OrderDetail{
				Mode: ModeTakeaway, Phone: "+91 9876543210", PaymentMethod: PaymentOnline,
				Takeaway: &TakeawayDetail{PickupTime: yesterday.Add(45 * time.Minute)},
			},
			Bill: second, Total: second.Total, CreatedAt: yesterday,
		},
		{
			ID: "ORDER-003", UserID: SampleUserID, Mode: ModeDineIn, Status: StatusCompleted,
			Items: []CartLine{sampleLine(menu[4], 2, threeDaysAgo), sampleLine(menu[2], 1, threeDaysAgo)},
			OrderDetails: OrderDetail{
				Mode: ModeDineIn, Phone: "+91 9876543210", PaymentMethod: PaymentTable,
				DineIn: &DineInDetail{TableNumber: 5, GuestCount: 2},
			},
			Bill: third, Total: third.Total, CreatedAt: threeDaysAgo,
		},
	}
}

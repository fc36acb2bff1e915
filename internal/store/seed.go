package store

import "github.com/google/uuid"

// SeedBouquets returns the starter shop catalog with new ids on every call.
func SeedBouquets() []Bouquet {
	return []Bouquet{
		{
			ID:            uuid.New(),
			NameEN:        "Sunshine Charm",
			NameVI:        "Phép Màu Ánh Dương",
			DescriptionEN: "A bright bouquet of sunflowers and daisies to bring joy.",
			DescriptionVI: "Bó hoa rực rỡ từ hoa hướng dương và cúc mang lại niềm vui.",
			MeaningEN:     "Symbolizes happiness and positive energy.",
			MeaningVI:     "Biểu tượng của hạnh phúc và năng lượng tích cực.",
			Price:         490000,
			ImageURL:      "https://example.com/images/sunshine_charm.jpg",
		},
		{
			ID:            uuid.New(),
			NameEN:        "Romantic Whisper",
			NameVI:        "Lời Thì Thầm Lãng Mạn",
			DescriptionEN: "Red roses and baby’s breath perfect for lovers.",
			DescriptionVI: "Hoa hồng đỏ và hoa bi trắng dành riêng cho người yêu.",
			MeaningEN:     "Represents love and passion.",
			MeaningVI:     "Tượng trưng cho tình yêu và đam mê.",
			Price:         650000,
			ImageURL:      "https://example.com/images/romantic_whisper.jpg",
		},
		{
			ID:            uuid.New(),
			NameEN:        "Elegant Grace",
			NameVI:        "Vẻ Đẹp Thanh Lịch",
			DescriptionEN: "White lilies and orchids in a graceful arrangement.",
			DescriptionVI: "Hoa lily trắng và lan được sắp xếp đầy thanh nhã.",
			MeaningEN:     "Symbolizes purity and elegance.",
			MeaningVI:     "Biểu tượng cho sự tinh khiết và thanh cao.",
			Price:         720000,
			ImageURL:      "https://example.com/images/elegant_grace.jpg",
		},
		{
			ID:            uuid.New(),
			NameEN:        "Morning Bloom",
			NameVI:        "Bình Minh Nở Rộ",
			DescriptionEN: "Soft pastel tulips representing a new beginning.",
			DescriptionVI: "Tulip màu pastel dịu dàng tượng trưng cho khởi đầu mới.",
			MeaningEN:     "Represents hope and renewal.",
			MeaningVI:     "Biểu trưng cho hy vọng và sự đổi mới.",
			Price:         580000,
			ImageURL:      "https://example.com/images/morning_bloom.jpg",
		},
		{
			ID:            uuid.New(),
			NameEN:        "Happy Moment",
			NameVI:        "Khoảnh Khắc Hạnh Phúc",
			DescriptionEN: "Mix of gerberas and roses to celebrate any happy event.",
			DescriptionVI: "Sự kết hợp của hoa đồng tiền và hồng cho mọi dịp vui.",
			MeaningEN:     "Spreads cheer and celebration.",
			MeaningVI:     "Mang đến niềm vui và sự hân hoan.",
			Price:         450000,
			ImageURL:      "https://example.com/images/happy_moment.jpg",
		},
	}
}

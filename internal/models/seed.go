package models

import "gorm.io/gorm"

var defaultCities = []City{
	{Name: "Саров", Region: "Нижегородская область", Latitude: 54.9333, Longitude: 43.3167},
	{Name: "Снежинск", Region: "Челябинская область", Latitude: 56.0850, Longitude: 60.7350},
	{Name: "Озерск", Region: "Челябинская область", Latitude: 55.7556, Longitude: 60.7028},
	{Name: "Лесной", Region: "Свердловская область", Latitude: 58.6356, Longitude: 59.7847},
	{Name: "Трехгорный", Region: "Челябинская область", Latitude: 54.8167, Longitude: 58.4500},
	{Name: "Северск", Region: "Томская область", Latitude: 56.6000, Longitude: 84.8833},
	{Name: "Железногорск", Region: "Красноярский край", Latitude: 56.2511, Longitude: 93.5327},
	{Name: "Зеленогорск", Region: "Красноярский край", Latitude: 56.1128, Longitude: 94.5958},
	{Name: "Новоуральск", Region: "Свердловская область", Latitude: 57.2439, Longitude: 60.0839},
	{Name: "Заречный", Region: "Пензенская область", Latitude: 53.2000, Longitude: 45.1667},
	{Name: "Заречный", Region: "Свердловская область", Latitude: 56.8167, Longitude: 61.3167},
	{Name: "Нововоронеж", Region: "Воронежская область", Latitude: 51.3064, Longitude: 39.2214},
	{Name: "Удомля", Region: "Тверская область", Latitude: 57.8786, Longitude: 35.0053},
	{Name: "Балаково", Region: "Саратовская область", Latitude: 52.0266, Longitude: 47.7956},
	{Name: "Курчатов", Region: "Курская область", Latitude: 51.6605, Longitude: 35.6569},
	{Name: "Полярные Зори", Region: "Мурманская область", Latitude: 67.3667, Longitude: 32.5000},
	{Name: "Сосновый Бор", Region: "Ленинградская область", Latitude: 59.9000, Longitude: 29.0833},
	{Name: "Волгодонск", Region: "Ростовская область", Latitude: 47.5132, Longitude: 42.1530},
	{Name: "Ангарск", Region: "Иркутская область", Latitude: 52.5406, Longitude: 103.8886},
	{Name: "Байкальск", Region: "Иркутская область", Latitude: 51.5167, Longitude: 104.1500},
	{Name: "Билибино", Region: "Чукотский АО", Latitude: 68.0544, Longitude: 166.4464},
	{Name: "Глазов", Region: "Удмуртская Республика", Latitude: 58.1394, Longitude: 52.6581},
	{Name: "Десногорск", Region: "Смоленская область", Latitude: 54.1500, Longitude: 33.2833},
	{Name: "Димитровград", Region: "Ульяновская область", Latitude: 54.2139, Longitude: 49.6186},
	{Name: "Краснокаменск", Region: "Забайкальский край", Latitude: 50.0986, Longitude: 118.0367},
	{Name: "Неман", Region: "Калининградская область", Latitude: 55.0333, Longitude: 22.0333},
	{Name: "Обнинск", Region: "Калужская область", Latitude: 55.0956, Longitude: 36.6072},
	{Name: "Певек", Region: "Чукотский АО", Latitude: 69.7011, Longitude: 170.3133},
	{Name: "Советск", Region: "Калининградская область", Latitude: 55.0833, Longitude: 21.8833},
	{Name: "Усолье-Сибирское", Region: "Иркутская область", Latitude: 52.7511, Longitude: 103.6450},
	{Name: "Электросталь", Region: "Московская область", Latitude: 55.7897, Longitude: 38.4461},
	{Name: "Энергодар", Region: "Запорожская область", Latitude: 47.4986, Longitude: 34.6564},
}

var defaultCategories = []Category{
	{Name: "Помощь детям", Slug: "children", Icon: "👶"},
	{Name: "Помощь пожилым и ветеранам", Slug: "elderly", Icon: "👴"},
	{Name: "Помощь животным", Slug: "animals", Icon: "🐕"},
	{Name: "Экология и благоустройство", Slug: "ecology", Icon: "🌱"},
	{Name: "Образование и наставничество", Slug: "education", Icon: "📚"},
	{Name: "Здоровый образ жизни", Slug: "health", Icon: "💪"},
	{Name: "Культура и искусство", Slug: "culture", Icon: "🎭"},
	{Name: "Спорт", Slug: "sports", Icon: "⚽"},
	{Name: "Социальная помощь", Slug: "social", Icon: "🤝"},
	{Name: "Патриотическое воспитание", Slug: "patriotic", Icon: "🇷🇺"},
}

// SeedReferenceData inserts the cities and categories that are missing.
// Existing rows are left untouched so it is safe to run on every start.
func SeedReferenceData(db *gorm.DB) error {
	for _, city := range defaultCities {
		city := city
		if err := db.Where("name = ? AND region = ?", city.Name, city.Region).
			FirstOrCreate(&city).Error; err != nil {
			return err
		}
	}

	for _, category := range defaultCategories {
		category := category
		if err := db.Where("slug = ?", category.Slug).FirstOrCreate(&category).Error; err != nil {
			return err
		}
	}

	return nil
}

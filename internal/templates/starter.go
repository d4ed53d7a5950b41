// Package templates ships the starter day templates used to seed the
// itinerary template cache at boot. The cache is process-local, so without
// seeding every restart would pay a first AI call per destination.
package templates

import "github.com/FACorreiaa/go-trip-planner/internal/types"

// Starter returns seed templates for a handful of popular destinations.
// Deliberately generic: real AI-generated itineraries replace these as soon
// as a trip to the destination is processed.
func Starter() map[string][]types.DayTemplate {
	return map[string][]types.DayTemplate{
		"paris": {
			{
				Title: "Classic Paris landmarks",
				Activities: []types.ActivityTemplate{
					{Time: "09:00", Description: "Eiffel Tower visit", Type: types.ActivityGeneral, Location: "Champ de Mars"},
					{Time: "12:30", Description: "Lunch at a brasserie", Type: types.ActivityMeal, Location: "7th arrondissement"},
					{Time: "14:30", Description: "Seine river cruise", Type: types.ActivityGeneral, Location: "Pont de l'Alma"},
					{Time: "19:00", Description: "Dinner in the Latin Quarter", Type: types.ActivityMeal, Location: "Latin Quarter"},
				},
			},
			{
				Title: "Museums and gardens",
				Activities: []types.ActivityTemplate{
					{Time: "09:30", Description: "Louvre Museum highlights", Type: types.ActivityGeneral, Location: "Rue de Rivoli"},
					{Time: "13:00", Description: "Picnic in the Tuileries", Type: types.ActivityMeal, Location: "Jardin des Tuileries"},
					{Time: "15:00", Description: "Walk to Musee d'Orsay", Type: types.ActivityTransport, Location: "Left Bank"},
					{Time: "16:00", Description: "Impressionist galleries", Type: types.ActivityGeneral, Location: "Musee d'Orsay"},
					{Time: "20:00", Description: "Dinner in Saint-Germain", Type: types.ActivityMeal, Location: "Saint-Germain-des-Pres"},
				},
			},
			{
				Title: "Montmartre and local life",
				Activities: []types.ActivityTemplate{
					{Time: "09:00", Description: "Sacre-Coeur and artists' square", Type: types.ActivityGeneral, Location: "Montmartre"},
					{Time: "12:00", Description: "Creperie lunch", Type: types.ActivityMeal, Location: "Montmartre"},
					{Time: "14:00", Description: "Covered passages walk", Type: types.ActivityGeneral, Location: "2nd arrondissement"},
					{Time: "19:30", Description: "Bistro dinner", Type: types.ActivityMeal, Location: "Pigalle"},
				},
			},
			{
				Title: "Royal day trip",
				Activities: []types.ActivityTemplate{
					{Time: "08:30", Description: "Train to Versailles", Type: types.ActivityTransport, Location: "Gare Montparnasse"},
					{Time: "10:00", Description: "Palace of Versailles tour", Type: types.ActivityGeneral, Location: "Versailles"},
					{Time: "13:30", Description: "Lunch near the palace gardens", Type: types.ActivityMeal, Location: "Versailles"},
					{Time: "15:00", Description: "Gardens and Trianon estate", Type: types.ActivityGeneral, Location: "Versailles"},
					{Time: "19:30", Description: "Dinner back in Paris", Type: types.ActivityMeal, Location: "Le Marais"},
				},
			},
			{
				Title: "Le Marais and farewell",
				Activities: []types.ActivityTemplate{
					{Time: "10:00", Description: "Le Marais boutiques and falafel", Type: types.ActivityGeneral, Location: "Le Marais"},
					{Time: "13:00", Description: "Lunch at a market hall", Type: types.ActivityMeal, Location: "Marche des Enfants Rouges"},
					{Time: "15:00", Description: "Pere Lachaise or Canal Saint-Martin", Type: types.ActivityGeneral, Location: "East Paris"},
					{Time: "20:00", Description: "Farewell dinner", Type: types.ActivityMeal, Location: "Bastille"},
				},
			},
		},
		"tokyo": {
			{
				Title: "East side classics",
				Activities: []types.ActivityTemplate{
					{Time: "09:00", Description: "Senso-ji temple and Nakamise street", Type: types.ActivityGeneral, Location: "Asakusa"},
					{Time: "12:30", Description: "Ramen lunch", Type: types.ActivityMeal, Location: "Asakusa"},
					{Time: "14:30", Description: "Sumida river walk to Skytree", Type: types.ActivityGeneral, Location: "Sumida"},
					{Time: "19:00", Description: "Izakaya dinner", Type: types.ActivityMeal, Location: "Ueno"},
				},
			},
			{
				Title: "Shibuya and Harajuku",
				Activities: []types.ActivityTemplate{
					{Time: "09:30", Description: "Meiji Shrine forest walk", Type: types.ActivityGeneral, Location: "Harajuku"},
					{Time: "12:00", Description: "Lunch on Takeshita street", Type: types.ActivityMeal, Location: "Harajuku"},
					{Time: "14:00", Description: "Shibuya crossing and Shibuya Sky", Type: types.ActivityGeneral, Location: "Shibuya"},
					{Time: "19:30", Description: "Conveyor-belt sushi dinner", Type: types.ActivityMeal, Location: "Shibuya"},
				},
			},
			{
				Title: "Markets and gardens",
				Activities: []types.ActivityTemplate{
					{Time: "08:00", Description: "Tsukiji outer market breakfast", Type: types.ActivityMeal, Location: "Tsukiji"},
					{Time: "10:30", Description: "Hamarikyu Gardens", Type: types.ActivityGeneral, Location: "Chuo"},
					{Time: "13:00", Description: "Ginza stroll and department-store food hall", Type: types.ActivityGeneral, Location: "Ginza"},
					{Time: "18:30", Description: "Yakitori under the tracks", Type: types.ActivityMeal, Location: "Yurakucho"},
				},
			},
			{
				Title: "Day trip to Kamakura",
				Activities: []types.ActivityTemplate{
					{Time: "08:00", Description: "Train to Kamakura", Type: types.ActivityTransport, Location: "Tokyo Station"},
					{Time: "09:30", Description: "Great Buddha and Hase-dera", Type: types.ActivityGeneral, Location: "Kamakura"},
					{Time: "12:30", Description: "Seaside lunch", Type: types.ActivityMeal, Location: "Kamakura"},
					{Time: "14:30", Description: "Enoshima island walk", Type: types.ActivityGeneral, Location: "Enoshima"},
					{Time: "19:30", Description: "Dinner back in Tokyo", Type: types.ActivityMeal, Location: "Shinjuku"},
				},
			},
			{
				Title: "Shinjuku finale",
				Activities: []types.ActivityTemplate{
					{Time: "10:00", Description: "Shinjuku Gyoen garden", Type: types.ActivityGeneral, Location: "Shinjuku"},
					{Time: "13:00", Description: "Tonkatsu lunch", Type: types.ActivityMeal, Location: "Shinjuku"},
					{Time: "15:00", Description: "Metropolitan Government Building views", Type: types.ActivityGeneral, Location: "Nishi-Shinjuku"},
					{Time: "19:00", Description: "Omoide Yokocho alley dinner", Type: types.ActivityMeal, Location: "Shinjuku"},
				},
			},
		},
		"bangkok": {
			{
				Title: "Temples of the old city",
				Activities: []types.ActivityTemplate{
					{Time: "08:30", Description: "Grand Palace and Wat Phra Kaew", Type: types.ActivityGeneral, Location: "Phra Nakhon"},
					{Time: "12:00", Description: "Riverside pad thai lunch", Type: types.ActivityMeal, Location: "Tha Maharaj"},
					{Time: "13:30", Description: "Wat Pho reclining Buddha", Type: types.ActivityGeneral, Location: "Phra Nakhon"},
					{Time: "15:00", Description: "Ferry across to Wat Arun", Type: types.ActivityTransport, Location: "Chao Phraya"},
					{Time: "19:00", Description: "Street food dinner", Type: types.ActivityMeal, Location: "Chinatown"},
				},
			},
			{
				Title: "Markets and canals",
				Activities: []types.ActivityTemplate{
					{Time: "07:30", Description: "Floating market tour", Type: types.ActivityGeneral, Location: "Damnoen Saduak"},
					{Time: "12:30", Description: "Boat noodle lunch", Type: types.ActivityMeal, Location: "Victory Monument"},
					{Time: "15:00", Description: "Jim Thompson House", Type: types.ActivityGeneral, Location: "Pathum Wan"},
					{Time: "19:30", Description: "Rooftop dinner", Type: types.ActivityMeal, Location: "Silom"},
				},
			},
			{
				Title: "Modern Bangkok",
				Activities: []types.ActivityTemplate{
					{Time: "10:00", Description: "Chatuchak or Siam malls", Type: types.ActivityGeneral, Location: "Siam"},
					{Time: "13:00", Description: "Food court lunch", Type: types.ActivityMeal, Location: "Siam Paragon"},
					{Time: "15:30", Description: "Lumpini Park and monitor lizards", Type: types.ActivityGeneral, Location: "Lumpini"},
					{Time: "19:00", Description: "Night market dinner", Type: types.ActivityMeal, Location: "Ratchada"},
				},
			},
			{
				Title: "Ayutthaya day trip",
				Activities: []types.ActivityTemplate{
					{Time: "07:30", Description: "Minivan to Ayutthaya", Type: types.ActivityTransport, Location: "Mo Chit"},
					{Time: "09:30", Description: "Ancient temple ruins by bicycle", Type: types.ActivityGeneral, Location: "Ayutthaya"},
					{Time: "13:00", Description: "River prawn lunch", Type: types.ActivityMeal, Location: "Ayutthaya"},
					{Time: "18:30", Description: "Dinner back in Bangkok", Type: types.ActivityMeal, Location: "Sukhumvit"},
				},
			},
			{
				Title: "Riverside farewell",
				Activities: []types.ActivityTemplate{
					{Time: "10:00", Description: "Bangkok National Museum", Type: types.ActivityGeneral, Location: "Phra Nakhon"},
					{Time: "13:00", Description: "Last street food crawl", Type: types.ActivityMeal, Location: "Banglamphu"},
					{Time: "16:00", Description: "Chao Phraya sunset cruise", Type: types.ActivityGeneral, Location: "Sathorn Pier"},
					{Time: "19:30", Description: "Farewell dinner", Type: types.ActivityMeal, Location: "Riverside"},
				},
			},
		},
	}
}

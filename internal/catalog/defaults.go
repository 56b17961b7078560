package catalog

const (
	bannerHomeWorkout = "assets/exerciseBanners/homeWorkout.jpg"
	gifPushUps        = "assets/exerciseGifs/pushUps.gif"
)

func media() Media {
	return Media{Image: bannerHomeWorkout, Animation: gifPushUps}
}

// DefaultPlans is the built-in workout catalog
var DefaultPlans = []Plan{
	{
		ID:          "cat_001",
		Name:        "Home Workout",
		Description: "Full body exercises you can do at home without any equipment.",
		Image:       bannerHomeWorkout,
		Exercises: []Exercise{
			{
				ID:   "hw_001",
				Name: "Bodyweight Squat",
				Instructions: []string{
					"Stand with feet shoulder-width apart, toes slightly out.",
					"Lower hips as if sitting in a chair.",
					"Push through your heels to return to start.",
				},
				Benefits: []string{"Strengthens legs and glutes", "Improves mobility"},
				Tips:     []string{"Keep core engaged.", "Avoid letting knees cave in."},
				Media:    media(),
			},
			{
				ID:   "hw_002",
				Name: "Push Ups",
				Instructions: []string{
					"Place hands slightly wider than shoulders.",
					"Lower chest close to floor.",
					"Push back to starting position.",
				},
				Benefits: []string{"Builds upper body strength", "Engages core"},
				Tips:     []string{"Keep body in a straight line.", "Don't flare elbows."},
				Media:    media(),
			},
			{
				ID:   "hw_003",
				Name: "Leg Raises",
				Instructions: []string{
					"Lie on your back, legs extended.",
					"Lift both legs up to 90 degrees.",
					"Lower slowly without touching the floor.",
				},
				Benefits: []string{"Targets lower abs", "Improves control"},
				Tips:     []string{"Keep back flat on the ground.", "Move slowly."},
				Media:    media(),
			},
		},
	},
	{
		ID:          "cat_002",
		Name:        "Abs Workout",
		Description: "Focused exercises to strengthen and define abdominal muscles.",
		Image:       bannerHomeWorkout,
		Exercises: []Exercise{
			{
				ID:   "abs_001",
				Name: "Crunches",
				Instructions: []string{
					"Lie on your back with knees bent.",
					"Lift your shoulders off the ground using your abs.",
					"Lower back down slowly.",
				},
				Benefits: []string{"Strengthens core", "Tones upper abs"},
				Tips:     []string{"Avoid pulling your neck.", "Exhale while lifting."},
				Media:    media(),
			},
			{
				ID:   "abs_002",
				Name: "Plank",
				Instructions: []string{
					"Get into forearm plank position.",
					"Keep your body in a straight line.",
					"Hold the position for 30-60 seconds.",
				},
				Benefits: []string{"Improves core stability", "Works full core"},
				Tips:     []string{"Don't let hips drop.", "Engage your glutes."},
				Media:    media(),
			},
		},
	},
	{
		ID:          "cat_003",
		Name:        "7 Minute Workout",
		Description: "A scientifically designed circuit training workout done in 7 minutes.",
		Image:       bannerHomeWorkout,
		Exercises: []Exercise{
			{
				ID:   "7m_001",
				Name: "Jumping Jacks",
				Instructions: []string{
					"Jump with legs spread and hands overhead.",
					"Return to starting position and repeat.",
				},
				Benefits: []string{"Cardio warm-up", "Increases heart rate"},
				Tips:     []string{"Land softly.", "Keep arms straight."},
				Media:    media(),
			},
			{
				ID:   "7m_002",
				Name: "Wall Sit",
				Instructions: []string{
					"Lean against a wall with knees at 90 degrees.",
					"Hold the position for 30 seconds.",
				},
				Benefits: []string{"Strengthens thighs", "Improves endurance"},
				Tips:     []string{"Keep back flat on wall.", "Don't rest hands on thighs."},
				Media:    media(),
			},
			{
				ID:   "7m_003",
				Name: "High Knees Running in Place",
				Instructions: []string{
					"Run in place lifting knees high towards chest.",
					"Pump arms to maintain rhythm.",
				},
				Benefits: []string{"Improves cardio", "Activates core"},
				Tips:     []string{"Keep a quick pace.", "Land on balls of your feet."},
				Media:    media(),
			},
		},
	},
}

// DefaultArticles is the built-in Learn section
var DefaultArticles = []Article{
	{
		ID:       "a1",
		Title:    "What is Pre-diabetes?",
		Category: "Understanding Pre-diabetes",
		ImageURL: "https://images.unsplash.com/photo-1532938911079-cd9185a5399c",
		Content: []string{
			"Pre-diabetes is a serious health condition where blood sugar levels are higher than normal, but not high enough yet to be diagnosed as type 2 diabetes. It means you are at a higher risk for developing type 2 diabetes, heart disease, and stroke.",
			"The good news is that pre-diabetes can often be reversed through lifestyle changes, such as healthy eating and regular physical activity. Many people with pre-diabetes don't have any symptoms, so regular check-ups with your doctor are important.",
			"Key indicators include a fasting blood sugar level between 100 and 125 mg/dL, or an A1C level between 5.7% and 6.4%.",
		},
	},
	{
		ID:       "a2",
		Title:    "The Glycemic Index Explained",
		Category: "Diet & Nutrition",
		ImageURL: "https://images.unsplash.com/photo-1616715694770-b7470f1a9d0c",
		Content: []string{
			"The Glycemic Index (GI) is a system that ranks carbohydrate-containing foods by how much they raise blood sugar levels after eating. Foods are ranked on a scale of 0 to 100.",
			"**Low GI foods (55 or less):** Cause a slower, more gradual rise in blood sugar. Examples include most vegetables, fruits, whole grains, and legumes.",
			"**Medium GI foods (56-69):** Have a moderate effect on blood sugar. Examples include whole wheat bread, brown rice, and sweet potatoes.",
			"**High GI foods (70 or more):** Cause a rapid spike in blood sugar. Examples include white bread, white rice, sugary cereals, and processed snacks.",
			"For pre-diabetes reversal, focusing on low and medium GI foods can help manage blood sugar levels more effectively.",
		},
	},
}

// DefaultMealPlans is the built-in eating guidance
var DefaultMealPlans = []MealPlan{
	{
		ID:       "mp1",
		Title:    "Principles of Healthy Eating for Pre-diabetes",
		ImageURL: "https://images.unsplash.com/photo-1542842410-639a04a58957",
		Content: []string{
			"Focus on whole, unprocessed foods like fruits, vegetables, whole grains, lean proteins, and healthy fats.",
			"Limit added sugars, sugary drinks, and refined carbohydrates (white bread, white rice, pastries).",
			"Choose low glycemic index (GI) foods to help manage blood sugar spikes.",
			"Practice portion control. Even healthy foods can impact blood sugar if consumed in large amounts.",
			"Stay hydrated with water. Avoid fruit juices, which are often high in sugar.",
			"Eat regular meals to help stabilize blood sugar levels throughout the day.",
		},
	},
	{
		ID:       "mp2",
		Title:    "Sample Day Meal Plan",
		ImageURL: "https://images.unsplash.com/photo-1627914807027-e4be1b351187",
		Content: []string{
			"**Breakfast:** Oatmeal (steel-cut or rolled oats) with berries and a sprinkle of nuts. Avoid instant oats.",
			"**Mid-morning Snack:** A small apple with a tablespoon of almond butter.",
			"**Lunch:** Large salad with mixed greens, grilled chicken or chickpeas, and a vinaigrette dressing. Add plenty of non-starchy vegetables.",
			"**Afternoon Snack:** A handful of unsalted almonds or Greek yogurt.",
			"**Dinner:** Baked salmon with steamed broccoli and a small serving of quinoa or brown rice.",
			"**Evening Snack (if hungry):** A few baby carrots or cucumber slices.",
		},
	},
}

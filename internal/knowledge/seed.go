package knowledge

import "qa-paper-be/internal/entity"

// SeedEntries returns the starter corpus loaded by cmd/seed_knowledge. The
// entries cover the subjects the answer pipeline is most often asked about so
// a fresh deployment produces grounded answers before any curation happens.
func SeedEntries() []*entity.KnowledgeEntry {
	return []*entity.KnowledgeEntry{
		{
			Subject:  "mathematics",
			Topic:    "Pythagorean Theorem",
			Language: "en",
			Content: "The Pythagorean theorem states that in a right-angled triangle, the square of the " +
				"length of the hypotenuse (the side opposite the right angle) is equal to the sum of " +
				"squares of the lengths of the other two sides. This can be written as: a² + b² = c², " +
				"where c represents the length of the hypotenuse and a and b represent the lengths of " +
				"the other two sides.",
			References: []string{"Euclid's Elements", "Basic Geometry Textbook"},
		},
		{
			Subject:  "mathematics",
			Topic:    "Quadratic Formula",
			Language: "en",
			Content: "The quadratic formula is used to solve quadratic equations of the form ax² + bx + c = 0. " +
				"The solutions are given by: x = (-b ± √(b² - 4ac)) / (2a). The discriminant (b² - 4ac) " +
				"determines the nature of the roots: if positive, there are two real roots; if zero, one " +
				"real root; if negative, two complex roots.",
			References: []string{"Algebra Fundamentals", "College Algebra"},
		},
		{
			Subject:  "science",
			Topic:    "Newton's Laws of Motion",
			Language: "en",
			Content: "Newton's three laws of motion are fundamental principles in classical mechanics. " +
				"First Law (Inertia): An object at rest stays at rest and an object in motion stays in " +
				"motion with the same speed and direction unless acted upon by an unbalanced force. " +
				"Second Law: Force equals mass times acceleration (F = ma). Third Law: For every action, " +
				"there is an equal and opposite reaction.",
			References: []string{"Principia Mathematica", "Physics Textbook"},
		},
		{
			Subject:  "science",
			Topic:    "Photosynthesis",
			Language: "en",
			Content: "Photosynthesis is the process by which green plants and some other organisms use " +
				"sunlight to synthesize foods with the help of chlorophyll. The general equation is: " +
				"6CO₂ + 6H₂O + light energy → C₆H₁₂O₆ + 6O₂. This process occurs in two stages: " +
				"light-dependent reactions (in thylakoids) and light-independent reactions or Calvin " +
				"cycle (in stroma).",
			References: []string{"Biology: The Science of Life", "Plant Physiology"},
		},
		{
			Subject:  "history",
			Topic:    "World War II",
			Language: "en",
			Content: "World War II (1939-1945) was a global war involving most of the world's nations. " +
				"It was the most widespread war in history, with more than 100 million people serving in " +
				"military units. Major participants included the Axis powers (Germany, Italy, Japan) and " +
				"the Allied powers (United States, Soviet Union, United Kingdom, China, and others). The " +
				"war ended with the unconditional surrender of the Axis powers.",
			References: []string{"The Second World War by Winston Churchill", "World History Encyclopedia"},
		},
		{
			Subject:  "literature",
			Topic:    "Shakespeare's Tragedies",
			Language: "en",
			Content: "William Shakespeare wrote several famous tragedies including Hamlet, Macbeth, " +
				"Othello, King Lear, and Romeo and Juliet. These plays typically feature a protagonist " +
				"with a tragic flaw that leads to their downfall. Common themes include ambition, " +
				"jealousy, revenge, and fate. Shakespeare's tragedies are known for their complex " +
				"characters, poetic language, and exploration of human nature.",
			References: []string{"The Complete Works of Shakespeare", "Shakespearean Tragedy by A.C. Bradley"},
		},
		{
			Subject:  "technology",
			Topic:    "Object-Oriented Programming",
			Language: "en",
			Content: "Object-Oriented Programming (OOP) is a programming paradigm based on the concept of " +
				"'objects', which contain data in the form of fields (attributes) and code in the form of " +
				"procedures (methods). The four main principles of OOP are: Encapsulation (bundling data " +
				"and methods), Abstraction (hiding complex implementation details), Inheritance (creating " +
				"new classes from existing ones), and Polymorphism (objects of different types can be " +
				"accessed through the same interface).",
			References: []string{"Design Patterns: Elements of Reusable Object-Oriented Software", "Clean Code"},
		},
		{
			Subject:  "technology",
			Topic:    "HTTP Protocol",
			Language: "en",
			Content: "HTTP (Hypertext Transfer Protocol) is an application-layer protocol for transmitting " +
				"hypermedia documents. It follows a client-server model where the client opens a " +
				"connection to make a request, then waits until it receives a response. Common HTTP " +
				"methods include GET (retrieve data), POST (submit data), PUT (update data), DELETE " +
				"(remove data), and PATCH (partial update). HTTP status codes indicate the result of the " +
				"request: 2xx (success), 3xx (redirection), 4xx (client error), 5xx (server error).",
			References: []string{"HTTP: The Definitive Guide", "RFC 2616"},
		},
	}
}

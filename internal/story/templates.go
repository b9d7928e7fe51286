package story

import (
	"fmt"
	"strings"

	"storybook/internal/model"
)

// pageTemplate 单页模板，文本按50-60词撰写，占位符{name}/{description}/{style}
type pageTemplate struct {
	text        string
	imagePrompt string
}

type templateFamily struct {
	title string
	pages [model.PageCount]pageTemplate
}

// renderTemplates 本地模板级生成，无外部依赖,任何主题都有结果
func renderTemplates(theme model.Theme, ch model.Character, style model.Style) (*model.Story, error) {
	family, ok := families[theme]
	if !ok {
		family, ok = families[model.ThemeGeneric]
		if !ok {
			return nil, fmt.Errorf("no template family for theme %q", theme)
		}
	}

	replacer := strings.NewReplacer(
		"{name}", ch.Name,
		"{description}", ch.Description,
		"{style}", string(style),
	)

	story := &model.Story{
		Title:      replacer.Replace(family.title),
		Characters: []model.Character{ch},
	}
	for i, tpl := range family.pages {
		story.Pages = append(story.Pages, &model.Page{
			Page:        i + 1,
			Text:        replacer.Replace(tpl.text),
			ImagePrompt: replacer.Replace(tpl.imagePrompt),
		})
	}
	return story, nil
}

var families = map[model.Theme]templateFamily{
	model.ThemeSharing: {
		title: "{name}'s Amazing Adventure",
		pages: [model.PageCount]pageTemplate{
			{
				text:        "Once upon a time, there was a quiet little friend named {name}. {name} loved to play alone in the garden, tending rows of bright flowers and watching them bloom. But something always felt missing. The garden seemed hushed and lonely, and {name} secretly wished for someone to share all that beauty with.",
				imagePrompt: "{style} illustration: {name}, {description}, sitting alone in a colorful flower garden, looking thoughtful and a little wistful",
			},
			{
				text:        "One sunny morning, {name} noticed the other forest animals playing together in the meadow nearby. They laughed and told stories, but {name} felt far too timid to join them. 'Maybe I could share something special with them,' {name} thought, looking back at the garden where every flower nodded gently in the breeze.",
				imagePrompt: "{style} illustration: {name}, {description}, peeking shyly at a group of happy forest animals playing in a sunny meadow",
			},
			{
				text:        "{name} had a wonderful idea! {name} decided to share the prettiest flowers in the whole garden with everyone. Working carefully all afternoon, {name} picked the brightest blooms and arranged them into little bouquets, one for each friend in the meadow, making sure that every single bouquet looked perfect and smelled sweet.",
				imagePrompt: "{style} illustration: {name}, {description}, carefully gathering bright flowers into small bouquets in a sunlit garden",
			},
			{
				text:        "With a deep breath, {name} walked toward the other animals, carrying the flower bouquets. 'Would you like some flowers?' {name} asked shyly. Their eyes lit up with joy! They loved the beautiful gifts, and right away they invited {name} to join their games in the sunshine, cheering and clapping happily.",
				imagePrompt: "{style} illustration: {name}, {description}, handing flower bouquets to delighted forest animals who welcome {name} warmly",
			},
			{
				text:        "From that day on, {name} was never lonely again. The garden became a special place where all the forest friends gathered to share stories, laughter, and the beauty of growing things. {name} learned that sharing brings the greatest joy of all, and that friendship is the most precious gift of every season.",
				imagePrompt: "{style} illustration: {name}, {description}, laughing with many animal friends in a blooming garden at golden sunset",
			},
		},
	},
	model.ThemeFriendship: {
		title: "{name} Makes a Friend",
		pages: [model.PageCount]pageTemplate{
			{
				text:        "In a cozy corner of the forest lived {name}, who had just moved to a brand-new burrow. Everything smelled unfamiliar, and every path looked strange. {name} watched the other animals chatting by the old oak tree and wondered quietly, 'How does anyone ever make a friend in a big new place like this?'",
				imagePrompt: "{style} illustration: {name}, {description}, standing by a cozy burrow and watching animals gather near a big oak tree",
			},
			{
				text:        "The next morning, {name} packed a basket of berries and set off down the winding path. At the stream, a small turtle struggled to climb the slippery bank. {name} reached out and helped him up. 'Thank you kindly,' said the turtle with a smile. 'Nobody has ever stopped to help me before.'",
				imagePrompt: "{style} illustration: {name}, {description}, helping a small green turtle climb up a slippery stream bank",
			},
			{
				text:        "The turtle introduced {name} to the squirrels, the wrens, and the old badger by the bridge. Everyone shared the berries from the basket and told funny stories until sunset. {name} listened and laughed until both cheeks ached, feeling something warm and bright growing inside, like a little lantern being lit for the very first time.",
				imagePrompt: "{style} illustration: {name}, {description}, sharing a basket of berries with squirrels, wrens and a badger beside a wooden bridge",
			},
			{
				text:        "When a storm blew through the forest that night, the new friends worked together to patch {name}'s burrow with leaves and moss. Nobody had to be asked. 'That is what friends are for,' said the badger gently, shaking rain from his coat. {name} felt safer and happier than ever before.",
				imagePrompt: "{style} illustration: {name}, {description}, sheltering in a burrow while animal friends patch the roof with leaves during a storm",
			},
			{
				text:        "From then on, the old oak tree became their meeting place. Every morning, {name} and the friends gathered to trade stories, share breakfast, and plan small adventures. {name} learned that friendship does not ask where you came from. It only asks you to be kind, to listen well, and to show up.",
				imagePrompt: "{style} illustration: {name}, {description}, sharing breakfast with a circle of animal friends beneath a great oak tree at sunrise",
			},
		},
	},
	model.ThemeCreativity: {
		title: "{name}'s Dancing Day",
		pages: [model.PageCount]pageTemplate{
			{
				text:        "Meet {name}, a small and cheerful soul who loved to dance and make music! Every day, {name} would tap tiny feet and hum bright little melodies under the trees. But the other animals only tilted their heads, because nobody in the forest quite understood the simple joy of rhythm, movement, and song.",
				imagePrompt: "{style} illustration: {name}, {description}, dancing happily under tall trees while puzzled forest animals watch",
			},
			{
				text:        "One day, {name} noticed the forest had grown quiet and gray. The birds were not singing, and even the wind seemed to whisper instead of dance through the branches. 'I know exactly what this place needs,' {name} thought with determination, feeling a happy beat already beginning to bubble up inside like spring water.",
				imagePrompt: "{style} illustration: {name}, {description}, looking out over a quiet gray forest with silent birds on bare branches",
			},
			{
				text:        "{name} began to dance with all their heart, twirling and spinning across the meadow. The rhythm was so catchy that soon the birds started chirping along, the crickets joined in with a steady beat, and the leaves themselves began to rustle and sway in perfect time with the wonderful music.",
				imagePrompt: "{style} illustration: {name}, {description}, twirling across a meadow while birds sing and leaves swirl in rhythm",
			},
			{
				text:        "Before long, every animal in the forest joined the dance! Rabbits hopped to the beat, squirrels swayed on their branches, and even the wise old owl bobbed his head in time. {name} had shown everyone that music and dancing can wake up a joy that was only sleeping inside a quiet heart.",
				imagePrompt: "{style} illustration: {name}, {description}, leading rabbits, squirrels and an old owl in a joyful forest dance",
			},
			{
				text:        "From that day forward, the forest was filled with music and laughter. {name} became the forest's very own dance teacher, and every creature learned the secret {name} had known all along: when you move to the rhythm of your own heart, you can spread happiness everywhere you go, one joyful step at a time.",
				imagePrompt: "{style} illustration: {name}, {description}, teaching a happy crowd of forest animals to dance in a sunlit clearing",
			},
		},
	},
	model.ThemeLearning: {
		title: "{name} and the Hollow Tree School",
		pages: [model.PageCount]pageTemplate{
			{
				text:        "Once upon a time, there was a curious little soul named {name} who loved learning new things. Every single day, {name} asked questions about everything: why the sky turns pink at sunset, how flowers grow so tall, and where the river hurries off to each morning. The questions never, ever seemed to end.",
				imagePrompt: "{style} illustration: {name}, {description}, gazing curiously at a pink sunset sky above a winding river",
			},
			{
				text:        "One morning, {name} discovered a mysterious old library hidden inside the hollow of an ancient tree. Shelves curved up the walls, stacked with books about stars, oceans, mountains, and every wonder of the wide world. {name} gasped with delight, because this was surely the most perfect place in the forest for learning.",
				imagePrompt: "{style} illustration: {name}, {description}, stepping into a magical library inside a hollow tree with curved shelves full of books",
			},
			{
				text:        "Day after day, {name} read and studied, learning about glowing comets, deep blue seas, and tall snowy peaks. But the most important lesson was still waiting to be found, tucked between the pages like a pressed flower: knowing wonderful things becomes twice as wonderful the moment you share them with somebody else.",
				imagePrompt: "{style} illustration: {name}, {description}, reading a glowing book about comets and oceans by warm lantern light",
			},
			{
				text:        "So {name} began to teach the other animals everything the books had shown. The birds learned about far-away lands, the fish learned about ocean currents, and the rabbits learned to read the clouds. Everyone discovered that knowledge grows stronger, brighter, and much more fun whenever it is passed from friend to friend.",
				imagePrompt: "{style} illustration: {name}, {description}, showing a picture book to attentive birds, fish and rabbits by a pond",
			},
			{
				text:        "From that day forward, the hollow tree became a school for the whole forest. {name} showed everyone that curiosity is a door that never closes, and that sharing what you learn makes the world a kinder, more wonderful place for every creature, no matter how small, to live and grow and dream in.",
				imagePrompt: "{style} illustration: {name}, {description}, standing proudly at the hollow tree school surrounded by eager animal students",
			},
		},
	},
	model.ThemeCourage: {
		title: "{name} and the Dark Hollow",
		pages: [model.PageCount]pageTemplate{
			{
				text:        "{name} was gentle and clever, but one thing made {name}'s heart thump loudly: the deep dark hollow at the edge of the forest. The other animals said nothing scary lived there at all. Still, every time {name} walked past its shadowy entrance, those brave little paws would hurry quickly away.",
				imagePrompt: "{style} illustration: {name}, {description}, glancing nervously at the shadowy entrance of a dark hollow at the forest edge",
			},
			{
				text:        "One evening, a tiny cry floated out of the dark hollow. A duckling had wandered inside and could not find the way out. Everyone looked at one another nervously. {name} swallowed hard, feeling the fear flutter inside like moths. 'Someone has to help,' {name} whispered, 'and perhaps that someone is me.'",
				imagePrompt: "{style} illustration: {name}, {description}, standing before the dark hollow at dusk while worried animals listen to a faint cry",
			},
			{
				text:        "Step by careful step, {name} walked into the shadows, carrying one small glowing lantern. The darkness was not empty after all. It was full of soft moss, sleepy mushrooms, and gentle echoes. 'Keep going,' {name} whispered bravely with every step. 'Being scared just means you are doing something truly important.'",
				imagePrompt: "{style} illustration: {name}, {description}, walking through a dark mossy cave holding a small glowing lantern",
			},
			{
				text:        "At last, {name} found the duckling shivering beside a mossy stone and wrapped him up in a warm leaf blanket. Together they followed the lantern light back toward the entrance, and with every single step the hollow seemed a little smaller, a little softer, and not nearly so frightening anymore.",
				imagePrompt: "{style} illustration: {name}, {description}, comforting a small yellow duckling wrapped in a leaf blanket inside the hollow",
			},
			{
				text:        "The whole forest cheered when {name} and the duckling stepped into the moonlight. From that night on, {name} knew a wonderful secret: courage is not about never feeling afraid. Courage is feeling the fear, taking a deep breath, and doing the kind and helpful thing anyway, one brave step at a time.",
				imagePrompt: "{style} illustration: {name}, {description}, emerging from the hollow into moonlight with the duckling while forest animals cheer",
			},
		},
	},
	model.ThemeGeneric: {
		title: "{name} and the Meadow of Wonder",
		pages: [model.PageCount]pageTemplate{
			{
				text:        "In a magical meadow at the edge of the forest lived {name}, a friend unlike any other. Wherever {name} wandered, tiny flowers lifted their heads, and the morning dew sparkled just a little brighter. The meadow creatures all agreed there was something quietly wonderful about {name}, though nobody could say exactly what.",
				imagePrompt: "{style} illustration: {name}, {description}, strolling through a sparkling magical meadow where flowers lift their heads",
			},
			{
				text:        "One day, {name} discovered that the meadow was losing its sparkle! The flowers drooped, the colors faded, and even the butterflies folded their wings and sighed. 'I must find a way to bring the magic back,' {name} thought with determination, looking out across the quiet grass and the pale, tired blossoms.",
				imagePrompt: "{style} illustration: {name}, {description}, looking sadly at a faded meadow with drooping flowers and resting butterflies",
			},
			{
				text:        "{name} decided the magic was meant to be shared. So {name} visited every corner of the meadow, greeting each flower by name, humming to the sleepy bees, and leaving small kindnesses everywhere like scattered seeds. Slowly, wonderfully, color began creeping back into the petals, one soft and shining bloom at a time.",
				imagePrompt: "{style} illustration: {name}, {description}, gently greeting flowers and humming to bees as color returns to the meadow",
			},
			{
				text:        "As {name} shared more and more, something marvelous happened! The meadow began to glow brighter than ever before. Creatures came from every corner of the forest to see the shining flowers, the dancing butterflies, and the sparkling stream, and every one of them thanked {name} for bringing the wonder back home.",
				imagePrompt: "{style} illustration: {name}, {description}, standing in a glowing meadow as forest creatures arrive to see shining flowers and butterflies",
			},
			{
				text:        "From that day forward, {name} understood that the greatest magic of all comes from caring and sharing with others. The meadow became the most wonderful place in the whole forest, and every evening, as the fireflies rose like tiny lanterns, {name} smiled, knowing the sparkle would never, ever fade away again.",
				imagePrompt: "{style} illustration: {name}, {description}, smiling among rising fireflies in a glowing meadow at twilight",
			},
		},
	},
}

package syntax

// English is the plain vocabulary used in examples and tests:
//
//	funcdecl f ( x ) { return x + 0 ; }
//	vardecl a = 2 + 3 ;
var English = &Vocabulary{
	Name: "english",
	Declarators: []Spelling[Declarator]{
		{"funcdecl", FuncDecl},
		{"vardecl", VarDecl},
	},
	Keywords: []Spelling[Keyword]{
		{"if", If},
		{"else", Else},
		{"while", While},
		{"return", Return},
		{"scan", Scan},
		{"print", Print},
	},
	Operators: []Spelling[Operator]{
		{"+", Add},
		{"-", Sub},
		{"*", Mul},
		{"/", Div},
		{"<", Less},
		{">", More},
		{"<=", LessEqual},
		{">=", MoreEqual},
		{"==", Equal},
		{"!=", NotEqual},
		{"=", Assign},
		{"sqrt", Sqrt},
	},
	Separators: []Spelling[Separator]{
		{";", EndLine},
		{"(", BeginExpr},
		{")", EndExpr},
		{"(", BeginParams},
		{")", EndParams},
		{"{", BeginBody},
		{"}", EndBody},
		{"=>", EndCondition},
	},
	Fillers: []string{"note", "obviously", "clearly"},
	Comment: "//",
}

// Lecture is the language's native vocabulary. It has no spelling for else.
var Lecture = &Vocabulary{
	Name: "lecture",
	Declarators: []Spelling[Declarator]{
		{"итак_коллеги", FuncDecl},
		{"родные_фивты", VarDecl},
	},
	Keywords: []Spelling[Keyword]{
		{"ееесссли", If},
		{"сейчас_пойдёт_деградация", While},
		{"получаем", Return},
		{"так_и_запишем", Scan},
		{"покажем_что", Print},
	},
	Operators: []Spelling[Operator]{
		{"+", Add},
		{"-", Sub},
		{"*", Mul},
		{"/", Div},
		{"<", Less},
		{">", More},
		{"<=", LessEqual},
		{">=", MoreEqual},
		{"==", Equal},
		{"!=", NotEqual},
		{"зафиксируем_эпсилон:", Assign},
		{"корень", Sqrt},
	},
	Separators: []Spelling[Separator]{
		{"перерыв_коллеги", EndLine},
		{"прочувствуйте", BeginParams},
		{"следующий_факт", EndParams},
		{"(", BeginExpr},
		{")", EndExpr},
		{"начинаем_очередную_лекцию", BeginBody},
		{"коллеги_лекция_закончена", EndBody},
		{"=>", EndCondition},
	},
	Fillers: []string{"заметим", "очевидно", "матан"},
	Comment: "//",
}
